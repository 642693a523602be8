// Package context carries per-request state between the middlewares and the
// handlers: the request ID, the request-scoped logger and the session and
// theme stores hydrated from the request's cookies.
package context

import (
	"context"
	"log/slog"

	"agency/internal/store/auth"
	"agency/internal/store/theme"

	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	KeyRequestID  ContextKey = "request_id"
	KeyLogger     ContextKey = "logger"
	KeyAuthStore  ContextKey = "auth_store"
	KeyThemeStore ContextKey = "theme_store"

	// HeaderXRequestID is the HTTP header name for request ID.
	HeaderXRequestID = "X-Request-Id"
)

// GetRequestID returns the request ID set by the request ID middleware, or ""
// when the middleware did not run.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(string(KeyRequestID)).(string)

	return id
}

// SetRequestID sets the request ID in echo.Context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(KeyRequestID), requestID)
}

// WithRequestID returns a new context with the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// WithLogger returns a new context with the request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}

// GetLoggerOrDefault returns the request-scoped logger of ctx, or fallback.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// SetAuthStore stores the request's auth store in echo.Context.
func SetAuthStore(c echo.Context, store *auth.Store) {
	c.Set(string(KeyAuthStore), store)
}

// GetAuthStore returns the request's auth store, or nil before hydration.
func GetAuthStore(c echo.Context) *auth.Store {
	store, _ := c.Get(string(KeyAuthStore)).(*auth.Store)

	return store
}

// SetThemeStore stores the request's theme store in echo.Context.
func SetThemeStore(c echo.Context, store *theme.Store) {
	c.Set(string(KeyThemeStore), store)
}

// GetThemeStore returns the request's theme store, or nil before hydration.
func GetThemeStore(c echo.Context) *theme.Store {
	store, _ := c.Get(string(KeyThemeStore)).(*theme.Store)

	return store
}
