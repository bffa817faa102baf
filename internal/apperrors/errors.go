// Package apperrors defines the error kinds surfaced by domain operations.
//
// Every domain failure is an *Error carrying a Kind. Controllers map the kind to
// an HTTP status with HTTPStatus and show Message to the user; the wrapped Err is
// only logged.
package apperrors

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuth          Kind = "auth"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindAuthorization Kind = "authorization"
	KindTooMany       Kind = "too_many_requests"
)

// Sentinels distinguishing the two authentication failures.
var (
	ErrUnknownIdentity = errors.New("invalid username")
	ErrWrongSecret     = errors.New("invalid password")
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(resource, key string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found: " + key}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func TooManyRequests(message string) *Error {
	return &Error{Kind: KindTooMany, Message: message}
}

// UnknownIdentity is returned when no user matches the submitted username.
func UnknownIdentity() *Error {
	return &Error{Kind: KindAuth, Message: ErrUnknownIdentity.Error(), Err: ErrUnknownIdentity}
}

// WrongSecret is returned when the password does not match the stored hash.
func WrongSecret() *Error {
	return &Error{Kind: KindAuth, Message: ErrWrongSecret.Error(), Err: ErrWrongSecret}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" for
// infrastructure errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message, hiding infrastructure details.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong"
}

// HTTPStatus converts an error into the status code a controller should send.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooMany:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
