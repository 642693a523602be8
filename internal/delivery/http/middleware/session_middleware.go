package middleware

import (
	"log/slog"

	"agency/config"
	deliverycontext "agency/internal/delivery/context"
	"agency/internal/domain/service"
	"agency/internal/infra/backend"
	"agency/internal/infra/storage"
	"agency/internal/store/auth"
	"agency/internal/store/theme"

	"github.com/labstack/echo/v4"
)

// SessionMiddleware rehydrates the auth and theme stores from the request's
// cookies. It reads storage once per request; every later change is written
// back as Set-Cookie.
type SessionMiddleware struct {
	cfg     config.CookieConfig
	opts    storage.CookieOptions
	decoder service.TokenDecoder
	logger  *slog.Logger
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(cfg *config.Config, decoder service.TokenDecoder, logger *slog.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		cfg:     cfg.Cookie,
		opts:    storage.CookieOptionsFromConfig(cfg.Cookie),
		decoder: decoder,
		logger:  logger,
	}
}

// Process hydrates the stores and attaches the session token to the request
// context so backend calls carry it.
func (m *SessionMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		logger := deliverycontext.GetLoggerOrDefault(ctx, m.logger)
		jar := storage.NewCookie(c, m.opts)

		authStore := auth.New(jar, m.decoder, auth.WithTokenKey(m.cfg.AuthToken), auth.WithLogger(logger))
		authStore.Hydrate()

		themeStore := theme.New(jar, m.cfg.Theme)
		themeStore.Hydrate()

		deliverycontext.SetAuthStore(c, authStore)
		deliverycontext.SetThemeStore(c, themeStore)

		if token := authStore.Token(); token != "" {
			c.SetRequest(c.Request().WithContext(backend.WithToken(ctx, token)))
		}

		return next(c)
	}
}
