// Package entity contains the core business objects of the project.
package entity

import "slices"

// Role represents the role carried by an authenticated user.
type Role string

const (
	// RoleAdmin may use every dashboard view.
	RoleAdmin Role = "admin"
	// RoleEditor is a content role some deployments allow into the dashboard.
	RoleEditor Role = "editor"
	// RoleUser is a regular site account.
	RoleUser Role = "user"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// RolesFromStrings converts []string to Roles, dropping empty entries.
// Unknown role names are kept: the backend owns the role vocabulary.
func RolesFromStrings(ss []string) Roles {
	result := make(Roles, 0, len(ss))
	for _, s := range ss {
		if s == "" {
			continue
		}
		result = append(result, Role(s))
	}

	return result
}
