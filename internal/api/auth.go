package api

import (
	"context"
	"encoding/json"

	"agency/internal/apicache"
)

// AuthEndpoints are the login and signup writes. They change no cached
// collection and invalidate nothing.
type AuthEndpoints struct {
	cache  *apicache.Cache
	login  apicache.Mutation[Credentials, LoginResult]
	signup apicache.Mutation[SignupInput, LoginResult]
}

func newAuthEndpoints(cache *apicache.Cache, transport Transport) *AuthEndpoints {
	return &AuthEndpoints{
		cache: cache,
		login: apicache.Mutation[Credentials, LoginResult]{
			Name: "auth.login",
			Do: func(ctx context.Context, in Credentials) (json.RawMessage, error) {
				return transport.Post(ctx, "/auth/login", in, nil)
			},
		},
		signup: apicache.Mutation[SignupInput, LoginResult]{
			Name: "auth.signup",
			Do: func(ctx context.Context, in SignupInput) (json.RawMessage, error) {
				return transport.Post(ctx, "/auth/signup", in, nil)
			},
		},
	}
}

// Login exchanges credentials for a session token.
func (a *AuthEndpoints) Login(ctx context.Context, in Credentials) (LoginResult, error) {
	return a.login.Run(ctx, a.cache, in)
}

// Signup registers an account. The backend may return a token right away.
func (a *AuthEndpoints) Signup(ctx context.Context, in SignupInput) (LoginResult, error) {
	return a.signup.Run(ctx, a.cache, in)
}
