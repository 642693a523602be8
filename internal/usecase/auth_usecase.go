// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"agency/internal/domain/entity"
)

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	// From is where to return after login.
	From string `json:"from" form:"from"`
}

// SignupInput is the signup form.
type SignupInput struct {
	Name     string `json:"name" form:"name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// AuthOutput is the outcome of a login or signup. Token is empty when a
// signup did not log the account in.
type AuthOutput struct {
	Token string       `json:"-"`
	User  *entity.User `json:"user,omitempty"`
}

// AuthUsecase exchanges credentials with the backend for a session token.
type AuthUsecase interface {
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	Signup(ctx context.Context, input *SignupInput) (*AuthOutput, error)
}
