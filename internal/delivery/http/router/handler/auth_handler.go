// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"agency/config"
	deliverycontext "agency/internal/delivery/context"
	"agency/internal/delivery/http/response"
	"agency/internal/domain/entity"
	"agency/internal/errors"
	"agency/internal/guard"
	"agency/internal/usecase"

	"github.com/labstack/echo/v4"
)

// defaultReturnPath is where a login without a usable "from" lands.
const defaultReturnPath = "/dashboard"

// AuthHandler holds dependencies for login, signup and logout.
type AuthHandler struct {
	uc        usecase.AuthUsecase
	loginPath string
	logger    *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:        uc,
		loginPath: cfg.Auth.LoginPath,
		logger:    logger,
	}
}

// LoginView is the login page view model.
type LoginView struct {
	From          string       `json:"from"`
	Authenticated bool         `json:"authenticated"`
	User          *entity.User `json:"user,omitempty"`
}

// LoginPage renders the login form, carrying the path to return to.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	view := LoginView{From: guard.SafeReturnPath(c.QueryParam("from"), defaultReturnPath)}

	if store := deliverycontext.GetAuthStore(c); store != nil {
		if session, ok := store.Session(); ok {
			view.Authenticated = true
			view.User = session.User
		}
	}

	return response.View(c, http.StatusOK, "login", view)
}

// Login exchanges credentials for a token, persists it in the session cookie
// and returns the user to where the guard stopped them.
func (h *AuthHandler) Login(c echo.Context) error {
	var input usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&input); err != nil {
		return formError(c, err, LoginView{From: input.From})
	}

	output, err := h.uc.Login(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	store := deliverycontext.GetAuthStore(c)
	if store == nil {
		return errors.New("session store missing from request")
	}
	if err := store.Login(output.Token); err != nil {
		return errors.WithStack(err)
	}

	return c.Redirect(http.StatusSeeOther, guard.SafeReturnPath(input.From, defaultReturnPath))
}

// Signup registers an account. When the backend issues a token the user is
// logged in right away; otherwise they are sent to the login page.
func (h *AuthHandler) Signup(c echo.Context) error {
	var input usecase.SignupInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid signup input")
	}
	if err := c.Validate(&input); err != nil {
		return formError(c, err, map[string]string{"name": input.Name, "email": input.Email})
	}

	output, err := h.uc.Signup(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	if output.Token == "" {
		return response.Success(c, http.StatusCreated, output, "Account created, please log in")
	}

	if err := deliverycontext.GetAuthStore(c).Login(output.Token); err != nil {
		return errors.WithStack(err)
	}

	return c.Redirect(http.StatusSeeOther, defaultReturnPath)
}

// Logout clears the session and its cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if store := deliverycontext.GetAuthStore(c); store != nil {
		if err := store.Logout(); err != nil {
			return errors.WithStack(err)
		}
	}

	return c.Redirect(http.StatusSeeOther, h.loginPath)
}

// Unauthorized renders the page for sessions whose role may not enter.
func (h *AuthHandler) Unauthorized(c echo.Context) error {
	return response.ErrorWithData(c, http.StatusForbidden, "UNAUTHORIZED_ROLE",
		"You do not have permission to view this page", "", response.Page{View: "unauthorized"})
}
