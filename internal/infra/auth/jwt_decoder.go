// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strings"

	"agency/internal/domain/entity"
	"agency/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims is the identity payload the content backend signs into its tokens.
// Older tokens carry a roles array instead of a single role.
type Claims struct {
	ID    string   `json:"id,omitempty"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// jwtDecoder reads claims from a JWT without checking signature or expiry.
type jwtDecoder struct {
	parser *jwt.Parser
}

// NewJWTDecoder is the constructor for the unverified claims decoder.
func NewJWTDecoder() service.TokenDecoder {
	return &jwtDecoder{parser: jwt.NewParser()}
}

// Decode returns the user named by the token's claims.
func (d *jwtDecoder) Decode(token string) (*entity.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("empty token")
	}

	claims := &Claims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "failed to parse token structure")
	}

	user := &entity.User{
		ID:    claims.ID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  entity.Role(claims.Role),
	}
	if user.ID == "" {
		user.ID = claims.Subject
	}
	if user.Role == "" && len(claims.Roles) > 0 {
		user.Role = entity.Role(claims.Roles[0])
	}

	return user, nil
}
