package authapi

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-admin-console/internal/errors"
)

// APIError is a non-2xx response from the remote API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth api: %d %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, errors.ErrUnauthorized) match 401 and 403 responses.
func (e *APIError) Is(target error) bool {
	return target == errors.ErrUnauthorized && isAuthStatus(e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 or 403 from the remote API.
func IsUnauthorized(err error) bool {
	return errors.Is(err, errors.ErrUnauthorized)
}

// Message returns the server supplied message from err, or fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func isAuthStatus(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
