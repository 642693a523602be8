package handler

import (
	"net/http"

	deliverycontext "agency/internal/delivery/context"
	"agency/internal/delivery/http/response"
	"agency/internal/errors"

	"github.com/labstack/echo/v4"
)

// ThemeHandler reads and flips the dark/light preference.
type ThemeHandler struct{}

// NewThemeHandler is the constructor for ThemeHandler.
func NewThemeHandler() *ThemeHandler {
	return &ThemeHandler{}
}

// Get returns the current preference; every response also carries it.
func (h *ThemeHandler) Get(c echo.Context) error {
	return response.View(c, http.StatusOK, "theme", nil)
}

// Toggle flips the preference and persists it in the theme cookie.
func (h *ThemeHandler) Toggle(c echo.Context) error {
	store := deliverycontext.GetThemeStore(c)
	if store == nil {
		return errors.New("theme store missing from request")
	}
	if err := store.Toggle(); err != nil {
		return errors.WithStack(err)
	}

	return response.View(c, http.StatusOK, "theme", nil)
}
