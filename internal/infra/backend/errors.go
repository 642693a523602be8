package backend

import (
	"fmt"

	"agency/internal/errors"
)

// HTTPError represents a non-2xx response from the content API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err wraps an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	if httpErr, ok := errors.AsType[*HTTPError](err); ok {
		return httpErr.StatusCode == code
	}

	return false
}
