package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error wraps exactly one of these, so callers branch with errors.Is
// and read the client-facing message from the *Error itself.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidReference = errors.New("invalid reference")
	ErrDataMismatch     = errors.New("data mismatch")
	ErrOperationFailed  = errors.New("operation failed")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
)

// Error is a domain failure with a message safe to return to the client.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Message returns the client-facing message of err, or fallback when err is not a domain error.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return fallback
}
