package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// User-facing messages of the error taxonomy
const (
	MsgNotAuthenticated = "Not authenticated"
	MsgSessionExpired   = "Authentication expired. Please sign in again."
	MsgTooManyRequests  = "Too many requests. Please try again later."
	MsgServerError      = "Server error. Please try again later."
	MsgGeneric          = "An error occurred. Please try again."
	MsgConnection       = "Unable to connect. Please check your connection."
)

// StatusTransport marks a failure where no HTTP response was obtained
const StatusTransport = 0

// ErrNotAuthenticated matches any 401 outcome
var ErrNotAuthenticated = errors.New("not authenticated")

// Error is a backend call failure
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (status %d): %v", e.Message, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrNotAuthenticated
func (e *Error) Is(target error) bool {
	return target == ErrNotAuthenticated && e.StatusCode == http.StatusUnauthorized
}

// Transient reports whether the failure was a transport failure
func (e *Error) Transient() bool {
	return e.StatusCode == StatusTransport
}

// NotFoundMessage returns the 404 message for a resource noun
func NotFoundMessage(resource string) string {
	if resource == "" {
		resource = "Resource"
	}
	return resource + " not found"
}

// classify maps a non-2xx status to the taxonomy
func classify(status int, resource string) *Error {
	switch status {
	case http.StatusUnauthorized:
		return &Error{StatusCode: status, Message: MsgSessionExpired}
	case http.StatusNotFound:
		return &Error{StatusCode: status, Message: NotFoundMessage(resource)}
	case http.StatusTooManyRequests:
		return &Error{StatusCode: status, Message: MsgTooManyRequests}
	case http.StatusInternalServerError:
		return &Error{StatusCode: status, Message: MsgServerError}
	default:
		return &Error{StatusCode: status, Message: MsgGeneric}
	}
}
