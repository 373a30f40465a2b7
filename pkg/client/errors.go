package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable is returned without contacting the backend while the
	// circuit breaker is open.
	ErrUnavailable = errors.New("graph backend unavailable")

	// ErrInvalidResponse indicates a body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from graph backend")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string // "detail" field of the error body, when present
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// serverFault reports whether err should count against the breaker.
// Client mistakes (4xx) say nothing about backend health.
func serverFault(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}
