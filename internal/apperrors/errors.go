package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the boundary can map it to a status code
// without string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindInvalidTransition
	KindInsufficientStock
	KindConflict
)

type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

// Message is the client-safe reason, without any wrapped internals.
func (e *Error) Message() string { return e.msg }

func Validation(format string, args ...interface{}) *Error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

func Authorization(format string, args ...interface{}) *Error {
	return &Error{kind: KindAuthorization, msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func InvalidTransition(from, to string) *Error {
	return &Error{
		kind: KindInvalidTransition,
		msg:  fmt.Sprintf("invalid order status transition from %q to %q", from, to),
	}
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return &Error{kind: KindInsufficientStock, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

func Internal(err error, msg string) *Error {
	return &Error{kind: KindInternal, msg: msg, err: err}
}

// KindOf unwraps err looking for a taxonomy error; anything else is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps the taxonomy onto the boundary contract.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidTransition, KindInsufficientStock:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage is what the handler may expose. Internal failures are masked.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.kind != KindInternal {
		return e.Message()
	}
	return "internal server error"
}
