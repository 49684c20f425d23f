// Package apperr defines the error kinds shared by the services and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindInvalidCredentials
	KindInvalidReference
	KindUnauthenticated
	KindInvalidToken
	KindForbidden
	KindNotFound
	KindConflict
	KindInsufficientStock
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindInvalidReference:
		return "invalid_reference"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidToken:
		return "invalid_token"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// Error carries a client-facing message and, optionally, the cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrInvalidReference   = &Error{Kind: KindInvalidReference}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrInsufficientStock  = &Error{Kind: KindInsufficientStock}
	ErrInvalidState       = &Error{Kind: KindInvalidState}
)

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func InvalidInput(msg string) *Error       { return New(KindInvalidInput, msg) }
func InvalidCredentials(msg string) *Error { return New(KindInvalidCredentials, msg) }
func InvalidReference(msg string) *Error   { return New(KindInvalidReference, msg) }
func Unauthenticated(msg string) *Error    { return New(KindUnauthenticated, msg) }
func InvalidToken(msg string) *Error       { return New(KindInvalidToken, msg) }
func Forbidden(msg string) *Error          { return New(KindForbidden, msg) }
func NotFound(msg string) *Error           { return New(KindNotFound, msg) }
func Conflict(msg string) *Error           { return New(KindConflict, msg) }
func InsufficientStock(msg string) *Error  { return New(KindInsufficientStock, msg) }
func InvalidState(msg string) *Error       { return New(KindInvalidState, msg) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// Cause returns the text of the error wrapped by the first *Error in err's
// chain, falling back to Message. 500 responses report it.
func Cause(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return Message(err)
}

// HTTPStatus maps err onto a response code. Conflicts are reported as 400, not 409.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput, KindInvalidCredentials, KindInvalidReference,
		KindConflict, KindInsufficientStock, KindInvalidState:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
