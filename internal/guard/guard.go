// Package guard decides whether a protected view may be shown for a session.
package guard

import (
	"net/url"
	"strings"

	"agency/internal/domain/entity"
)

const (
	DefaultLoginPath        = "/login"
	DefaultUnauthorizedPath = "/unauthorized"
)

// DefaultAllowedRoles is used when neither the guard nor the input names any role.
var DefaultAllowedRoles = entity.Roles{entity.RoleAdmin}

// State is the outcome of an evaluation.
type State int

const (
	// StateLoading means the decision is not known yet. Nothing protected
	// may be shown and no redirect is issued.
	StateLoading State = iota
	StateAuthorized
	StateRedirectLogin
	StateRedirectUnauthorized
)

func (s State) String() string {
	switch s {
	case StateAuthorized:
		return "authorized"
	case StateRedirectLogin:
		return "redirect_login"
	case StateRedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "loading"
	}
}

// Decision is what to render for a protected path.
type Decision struct {
	State State
	// Target is the redirect location for the redirect states.
	Target string
}

// Input is everything a decision depends on.
type Input struct {
	// Mounted is false while the session is not yet known to the caller.
	Mounted bool
	Session *entity.Session
	// Path is the requested path, carried to the login page for the return trip.
	Path         string
	AllowedRoles entity.Roles
}

// Option configures a Guard.
type Option func(*Guard)

// WithLoginPath sets the redirect target for visitors without a session.
func WithLoginPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithUnauthorizedPath sets the redirect target for sessions with the wrong role.
func WithUnauthorizedPath(path string) Option {
	return func(g *Guard) {
		if path != "" {
			g.unauthorizedPath = path
		}
	}
}

// WithAllowedRoles sets the roles admitted when the input names none.
func WithAllowedRoles(roles entity.Roles) Option {
	return func(g *Guard) {
		if len(roles) > 0 {
			g.allowedRoles = roles
		}
	}
}

// Guard evaluates protected-view access.
type Guard struct {
	loginPath        string
	unauthorizedPath string
	allowedRoles     entity.Roles
}

// New returns a guard with the default targets and roles.
func New(opts ...Option) *Guard {
	g := &Guard{
		loginPath:        DefaultLoginPath,
		unauthorizedPath: DefaultUnauthorizedPath,
		allowedRoles:     DefaultAllowedRoles,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Evaluate decides with a default guard.
func Evaluate(in Input) Decision {
	return New().Evaluate(in)
}

// Evaluate maps the input to a decision. It never fails.
func (g *Guard) Evaluate(in Input) Decision {
	if !in.Mounted {
		return Decision{State: StateLoading}
	}

	if in.Session == nil || in.Session.Token == "" {
		return Decision{State: StateRedirectLogin, Target: g.LoginTarget(in.Path)}
	}

	allowed := in.AllowedRoles
	if len(allowed) == 0 {
		allowed = g.allowedRoles
	}
	if role := in.Session.Role(); role == "" || !allowed.Contains(role) {
		return Decision{State: StateRedirectUnauthorized, Target: g.unauthorizedPath}
	}

	return Decision{State: StateAuthorized}
}

// LoginTarget is the login location that returns to path after login.
// Slashes stay readable: /login?from=/dashboard/work.
func (g *Guard) LoginTarget(path string) string {
	if path == "" {
		return g.loginPath
	}

	from := strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")

	return g.loginPath + "?from=" + from
}

// SafeReturnPath returns from when it is a local absolute path, else fallback.
// It keeps the post-login return trip from leaving the site.
func SafeReturnPath(from, fallback string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return fallback
	}

	return from
}
