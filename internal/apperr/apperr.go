package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for HTTP mapping and logging. Handlers translate
// kinds into status codes; internal callers may still inspect the wrapped
// cause.
type Kind int

const (
	// Unexpected covers storage or dependency failures with no better class.
	Unexpected Kind = iota
	// Validation marks malformed or incomplete input.
	Validation
	// Conflict marks a uniqueness violation such as a duplicate identifier.
	Conflict
	// NotFound marks a missing user, token, or record.
	NotFound
	// Unauthorized marks a bad credential or session.
	Unauthorized
	// Forbidden marks an account that exists but may not authenticate.
	Forbidden
)

// Error carries a kind, a caller-safe message and an optional cause.
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

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error with a caller-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error. The message is what callers see; the
// cause stays available for logs via Unwrap.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind of err, defaulting to Unexpected for anything
// unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// MessageOf returns the caller-safe message for err. Unclassified errors map
// to a generic server-error message so internal details never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Server error"
}

// Status maps err to the HTTP status code its kind represents.
func Status(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
