// Package response renders the unified response envelope of every view.
package response

import (
	"net/http"

	deliverycontext "agency/internal/delivery/context"
	"agency/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// Response unified API response structure
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`    // HTTP status code
	Message string     `json:"message"` // User-friendly message
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Theme   *Theme     `json:"theme,omitempty"`
}

// ErrorInfo detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`    // Business error code, e.g., "VALIDATION_FAILED"
	Details string `json:"details"` // Detailed error description
}

// Theme is the document-root presentation state sent with every view.
type Theme struct {
	DarkMode  bool   `json:"darkMode"`
	RootClass string `json:"rootClass"`
}

// Page is the view model of a server-rendered view.
type Page struct {
	View string `json:"view"`
	Data any    `json:"data,omitempty"`
}

func themeOf(c echo.Context) *Theme {
	store := deliverycontext.GetThemeStore(c)
	if store == nil {
		return &Theme{DarkMode: true, RootClass: entity.ThemeDark}
	}

	return &Theme{DarkMode: store.DarkMode(), RootClass: store.RootClass()}
}

// Success successful response
func Success(c echo.Context, statusCode int, data any, message string) error {
	if message == "" {
		message = "Success"
	}

	return c.JSON(statusCode, Response{
		Success: true,
		Code:    statusCode,
		Message: message,
		Data:    data,
		Theme:   themeOf(c),
	})
}

// View renders the named view with its data.
func View(c echo.Context, statusCode int, view string, data any) error {
	return Success(c, statusCode, Page{View: view, Data: data}, "")
}

// Error error response
func Error(c echo.Context, statusCode int, errorCode string, message string, details string) error {
	return ErrorWithData(c, statusCode, errorCode, message, details, nil)
}

// ErrorWithData is an error response that also carries data, such as the
// submitted form so the user can retry without retyping it.
func ErrorWithData(c echo.Context, statusCode int, errorCode, message, details string, data any) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, Response{
		Success: false,
		Code:    statusCode,
		Message: message,
		Data:    data,
		Error: &ErrorInfo{
			Code:    errorCode,
			Details: details,
		},
		Theme: themeOf(c),
	})
}

// BindingError binding error response
func BindingError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusBadRequest, errorCode, message, "")
}

// NotFound 404 error
func NotFound(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusNotFound, errorCode, message, "")
}

// InternalServerError 500 error
func InternalServerError(c echo.Context, errorCode string, message string) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, "")
}
