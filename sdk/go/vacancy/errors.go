// Package vacancy provides an instrumented Go client for the vacancy API.
//
// Every call the client makes, unary or streamed, produces exactly one
// CallEvent on the configured Reporter, measured end to end. The
// instrumentation never changes what the caller observes: results, chunk
// boundaries, and errors pass through unmodified.
package vacancy

import (
	"errors"
	"fmt"
)

// Error represents an error response from the vacancy API with the HTTP
// status code and the server's error code and message.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("vacancy: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == 404
	}
	return false
}

// IsAlreadyExists returns true if the error is a 409.
func IsAlreadyExists(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == 409
	}
	return false
}

// IsUnauthenticated returns true if the error is a 401.
func IsUnauthenticated(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode == 401
	}
	return false
}
