package promo

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an error with the failure category it was raised for, so
// the HTTP layer never has to derive a status code from message text.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnprocessable
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindUnsupportedMedia
)

// Error is the tagged error carried across the promo package boundary.
// Kind is set at the point of failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a tagged error with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError tags an underlying error with a kind and message.
func WrapError(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Untagged errors are
// classified as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf extracts the tagged message from an error chain, falling
// back to the raw error text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error kind to its HTTP status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// Category returns the error category string used in response bodies.
func (k Kind) Category() string {
	switch k {
	case KindBadRequest:
		return "Bad Request"
	case KindUnprocessable:
		return "Unprocessable Entity"
	case KindNotFound:
		return "Not Found"
	case KindConflict:
		return "Conflict"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindUnsupportedMedia:
		return "Unsupported Media Type"
	default:
		return "Internal Server Error"
	}
}
