package api

import (
	"errors"
	"fmt"
)

// Transport errors.
var (
	// ErrInvalidBaseURL is returned when the API origin is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid API base URL: expected http(s)://host[:port]")

	// ErrUnreachable wraps every failure to complete a request
	// (DNS, connection refused, timeout, interrupted body).
	ErrUnreachable = errors.New("API unreachable")

	// ErrNotReady is returned by Health when the liveness endpoint answers with a non-2xx status.
	ErrNotReady = errors.New("API not ready")

	// ErrUnexpectedStatus is returned by region lookups answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrInvalidResponse is returned when a lookup body cannot be decoded.
	ErrInvalidResponse = errors.New("invalid response body")

	// ErrRejected is matched by every *RejectedError.
	ErrRejected = errors.New("submission rejected")
)

// RejectedError is returned when the collection endpoint answers a
// submission with a non-2xx status. Body holds the server's message verbatim.
type RejectedError struct {
	StatusCode int
	Body       string
}

// Error implements error.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("submission rejected (status %d): %s", e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrRejected.
func (e *RejectedError) Unwrap() error {
	return ErrRejected
}
