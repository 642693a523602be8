package errors

import (
	"net/http"

	"agency/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy carrying detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Is matches on error code so copies made by WithDetails still match the sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == t.errorCode
}

// Predefined error types
var (
	// Authentication-related errors
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid email or password",
		"",
	)

	ErrSignupFailed = NewBaseError(
		http.StatusBadRequest,
		"SIGNUP_FAILED",
		"Could not create the account",
		"",
	)

	ErrEmptyToken = NewBaseError(
		http.StatusBadGateway,
		"EMPTY_TOKEN",
		"The login response did not include a token",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Please fill in all required fields",
		"",
	)

	ErrImageRequired = NewBaseError(
		http.StatusBadRequest,
		"IMAGE_REQUIRED",
		"An image is required",
		"",
	)

	ErrInvalidJourneyKind = NewBaseError(
		http.StatusBadRequest,
		"INVALID_JOURNEY_KIND",
		"Unknown journey type",
		"",
	)

	// Dashboard write flow errors
	ErrConfirmationRequired = NewBaseError(
		http.StatusPreconditionRequired,
		"CONFIRMATION_REQUIRED",
		"Are you sure you want to delete this item?",
		"",
	)

	ErrBackendWriteFailed = NewBaseError(
		http.StatusBadGateway,
		"BACKEND_WRITE_FAILED",
		"Something went wrong while saving. Please try again.",
		"",
	)

	ErrBackendReadFailed = NewBaseError(
		http.StatusBadGateway,
		"BACKEND_READ_FAILED",
		"Something went wrong",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)
)
