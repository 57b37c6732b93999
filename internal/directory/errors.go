package directory

import (
	"errors"

	"github.com/facultyhub/pubdir/internal/storage"
)

// Code classifies a service error for transport mapping.
type Code string

// Error codes.
const (
	CodeValidation Code = "validation"
	CodeNotFound   Code = "not_found"
	CodeForbidden  Code = "forbidden"
	CodeProvider   Code = "provider"
)

// Sentinels matched by errors.Is against an *Error of the same code.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = storage.ErrNotFound
	ErrForbidden  = errors.New("forbidden")
	ErrProvider   = errors.New("scholar provider failed")
)

// Error is a service error carrying a user-facing message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's code.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case CodeValidation:
		return target == ErrValidation
	case CodeNotFound:
		return target == ErrNotFound
	case CodeForbidden:
		return target == ErrForbidden
	case CodeProvider:
		return target == ErrProvider
	}
	return false
}

func validationError(msg string, err error) error {
	return &Error{Code: CodeValidation, Message: msg, Err: err}
}

func notFoundError(msg string, err error) error {
	return &Error{Code: CodeNotFound, Message: msg, Err: err}
}

func forbiddenError(msg string) error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func providerError(msg string, err error) error {
	return &Error{Code: CodeProvider, Message: msg, Err: err}
}

// Message returns the user-facing message of err, or fallback when err is not
// a service error.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return fallback
}
