package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Match with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a typed failure carrying a user-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports invalid caller input.
func ValidationError(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// NotFoundError reports a referenced entity that does not exist.
func NotFoundError(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

// PreconditionError reports an operation attempted from the wrong state.
func PreconditionError(format string, args ...any) error {
	return newError(ErrPrecondition, format, args...)
}

// UnauthorizedError reports bad credentials or an expired session.
func UnauthorizedError(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}
