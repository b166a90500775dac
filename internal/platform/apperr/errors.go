package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindUnhandled Kind = iota
	KindNotFound
	KindBadRequest
	KindMethodNotAllowed
)

// Error carries a user-facing message and the HTTP class it maps to.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func MethodNotAllowed() error {
	return &Error{Kind: KindMethodNotAllowed, Message: "Method not allowed"}
}

// InvalidBody wraps a JSON decode failure.
func InvalidBody(err error) error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf("invalid request body: %v", err), Err: err}
}

// StatusCode maps err to an HTTP status. Unclassified errors are 500.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// IsNotFound reports whether err is a NotFound application error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNotFound
}
