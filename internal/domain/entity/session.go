package entity

// User is the identity carried by a session token.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the client-side record of who is logged in.
// User is nil when the token carries no readable identity.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Role returns the session's role, or the empty role when no user is known.
func (s *Session) Role() Role {
	if s == nil || s.User == nil {
		return ""
	}

	return s.User.Role
}
