package api

import "agency/internal/domain/entity"

// Record types exchanged with the backend.
type (
	Blog         = entity.Blog
	Client       = entity.Client
	TeamMember   = entity.TeamMember
	WorkItem     = entity.WorkItem
	JourneyEntry = entity.JourneyEntry
)

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupInput is the signup form.
type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResult is the data member of a login or signup response.
type LoginResult struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user,omitempty"`
}
