package service

import "agency/internal/domain/entity"

// TokenDecoder extracts the user identity carried inside a session token.
//
// Implementations must not call the backend: a restored session is trusted on
// the strength of the token's presence alone.
type TokenDecoder interface {
	Decode(token string) (*entity.User, error)
}
