// Package apperr gives every layer above the store a small, dispatchable set
// of error kinds instead of ad hoc error strings, so the handler layer can
// map failures to HTTP status codes without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidInput
	KindPrecondition
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindPrecondition:
		return "precondition"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is an apperr-flavored error carrying a kind and a message, with an
// optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return newErr(KindNotFound, format, args...)
}

func InvalidInput(format string, args ...interface{}) *Error {
	return newErr(KindInvalidInput, format, args...)
}

func Precondition(format string, args ...interface{}) *Error {
	return newErr(KindPrecondition, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newErr(KindConflict, format, args...)
}

func Internal(format string, args ...interface{}) *Error {
	return newErr(KindInternal, format, args...)
}

// Wrap attaches a kind to an underlying error, preserving it for errors.Is/As.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind from err, returning KindUnknown if err does not
// wrap an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
