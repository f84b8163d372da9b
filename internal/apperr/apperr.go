// Package apperr defines the failure taxonomy shared by the service layer and
// the HTTP layer. Services return *Error values (optionally wrapping a cause);
// the HTTP layer is the only place where a Kind is turned into a status code.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind uint8

const (
	// KindInternal is anything unexpected. It is the zero value so that
	// unclassified errors degrade to a 500.
	KindInternal Kind = iota
	// KindValidation is bad or missing input.
	KindValidation
	// KindConflict is a duplicate product name.
	KindConflict
	// KindUnauthorized is a missing or wrong credential.
	KindUnauthorized
	// KindNotFound is a missing record.
	KindNotFound
)

// String returns a short, log-friendly name for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Wire names used in error bodies.
const (
	NameValidation   = "ValidationError"
	NameUnauthorized = "UnauthorizedError"
	NameNotFound     = "NotFoundError"
	NameInternal     = "InternalServerError"

	// Transport-only names; no Kind maps to these.
	NameMethodNotAllowed = "MethodNotAllowedError"
	NameTooManyRequests  = "TooManyRequestsError"
)

// MsgInternal is the only message ever returned to clients for KindInternal.
const MsgInternal = "An unexpected error occurred."

// Error is a classified failure. Msg is safe to show to clients; Cause is
// for logs only.
type Error struct {
	Kind  Kind
	Name  string
	Msg   string
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

// Validation returns a KindValidation error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Name: NameValidation, Msg: msg}
}

// Conflict returns a KindConflict error. Duplicates are reported to clients
// as validation failures, so the wire name is shared.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Name: NameValidation, Msg: msg}
}

// Unauthorized returns a KindUnauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Name: NameUnauthorized, Msg: msg}
}

// NotFound returns a KindNotFound error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Name: NameNotFound, Msg: msg}
}

// Internal wraps cause as a KindInternal error with the generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Name: NameInternal, Msg: MsgInternal, Cause: cause}
}

// As extracts an *Error from err. Anything that is not an *Error is wrapped
// as Internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// KindOf reports the Kind of err; nil and unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
