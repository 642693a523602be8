package middleware

import (
	"log/slog"
	"net/http"

	"agency/config"
	deliverycontext "agency/internal/delivery/context"
	"agency/internal/delivery/http/response"
	"agency/internal/domain/entity"
	"agency/internal/guard"

	"github.com/labstack/echo/v4"
)

// GuardMiddleware keeps protected views away from visitors without a session
// or with the wrong role.
type GuardMiddleware struct {
	guard  *guard.Guard
	logger *slog.Logger
}

// NewGuard builds the route guard from config.
func NewGuard(cfg *config.Config) *guard.Guard {
	return guard.New(
		guard.WithLoginPath(cfg.Auth.LoginPath),
		guard.WithUnauthorizedPath(cfg.Auth.UnauthorizedPath),
		guard.WithAllowedRoles(entity.RolesFromStrings(cfg.Auth.AllowedRoles)),
	)
}

// NewGuardMiddleware is the constructor for GuardMiddleware.
func NewGuardMiddleware(g *guard.Guard, logger *slog.Logger) *GuardMiddleware {
	return &GuardMiddleware{guard: g, logger: logger}
}

// Require admits sessions holding one of roles, or the configured roles when
// none are given. It is evaluated on every request; the protected handler is
// never called unless the decision is Authorized.
func (m *GuardMiddleware) Require(roles ...string) echo.MiddlewareFunc {
	allowed := entity.RolesFromStrings(roles)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := deliverycontext.GetAuthStore(c)

			in := guard.Input{
				Mounted:      store != nil && !isPrefetch(c.Request()),
				Path:         c.Request().URL.RequestURI(),
				AllowedRoles: allowed,
			}
			if store != nil {
				if session, ok := store.Session(); ok {
					in.Session = &session
				}
			}

			decision := m.guard.Evaluate(in)
			logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)

			switch decision.State {
			case guard.StateAuthorized:
				return next(c)
			case guard.StateRedirectLogin, guard.StateRedirectUnauthorized:
				logger.Debug("Route guard redirect",
					slog.String("path", in.Path),
					slog.String("decision", decision.State.String()),
					slog.String("role", in.Session.Role().String()),
				)

				return c.Redirect(http.StatusFound, decision.Target)
			default:
				c.Response().Header().Set(echo.HeaderCacheControl, "no-store")

				return response.View(c, http.StatusOK, "loading", nil)
			}
		}
	}
}

// isPrefetch reports speculative navigations, which get the placeholder
// rather than protected content or a redirect.
func isPrefetch(r *http.Request) bool {
	return r.Header.Get("Sec-Purpose") == "prefetch" || r.Header.Get("Purpose") == "prefetch"
}
