package api

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnauthorized indicates the server rejected the session token (401/403).
type ErrUnauthorized struct {
	Status int
	Body   string
}

func (e *ErrUnauthorized) Error() string {
	return fmt.Sprintf("unauthorized (%d)", e.Status)
}

// ErrStatus is any other non-2xx response.
type ErrStatus struct {
	Code int
	Body string
}

func (e *ErrStatus) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

// ErrRateLimit indicates the server returned 429.
type ErrRateLimit struct {
	RetryAfter time.Duration
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s)", e.RetryAfter)
}

// ErrServerUnavailable indicates the server is down, unreachable or
// answered with a 5xx status.
type ErrServerUnavailable struct {
	Status int
	Err    error
}

func (e *ErrServerUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("server unavailable: %v", e.Err)
	}
	return fmt.Sprintf("server unavailable (%d)", e.Status)
}

func (e *ErrServerUnavailable) Unwrap() error { return e.Err }

// ErrInvalidPayload indicates a response body that could not be decoded
// or did not match the expected shape.
type ErrInvalidPayload struct {
	Body []byte
	Err  error
}

func (e *ErrInvalidPayload) Error() string {
	return fmt.Sprintf("invalid payload: %v", e.Err)
}

func (e *ErrInvalidPayload) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err carries an ErrUnauthorized.
func IsUnauthorized(err error) bool {
	var u *ErrUnauthorized
	return errors.As(err, &u)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var (
		u  *ErrUnauthorized
		s  *ErrStatus
		su *ErrServerUnavailable
		rl *ErrRateLimit
	)
	switch {
	case errors.As(err, &u):
		return u.Status
	case errors.As(err, &s):
		return s.Code
	case errors.As(err, &su):
		return su.Status
	case errors.As(err, &rl):
		return 429
	}
	return 0
}
