package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrNoBaseURL is returned when the client is built without a base URL.
	ErrNoBaseURL = errors.New("backend: base URL required")
)

// APIError represents a non-success response from the backend.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the backend-reported error, if any.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend: API error %d", e.StatusCode)
}

// IsServerError returns true if this is a server-side error (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// RequestError wraps a transport-level failure (network, decode).
type RequestError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("backend: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

func wrapRequest(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RequestError{Op: op, Err: err}
}
