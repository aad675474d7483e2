package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned when user input is not acceptable.
// With no Fields, Err is reported as a plain message.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// BadRequest is a shorthand for a field-less ValidationError.
func BadRequest(msg string) error {
	return &ValidationError{Err: errors.New(msg)}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type (
	NotFoundError       struct{ msg string }
	ConflictError       struct{ msg string }
	PermissionError     struct{ msg string }
	AuthenticationError struct{ msg string }
)

func NewNotFoundError(msg string) error       { return &NotFoundError{msg} }
func NewConflictError(msg string) error       { return &ConflictError{msg} }
func NewPermissionError(msg string) error     { return &PermissionError{msg} }
func NewAuthenticationError(msg string) error { return &AuthenticationError{msg} }

func (e NotFoundError) Error() string       { return e.msg }
func (e ConflictError) Error() string       { return e.msg }
func (e PermissionError) Error() string     { return e.msg }
func (e AuthenticationError) Error() string { return e.msg }

// IsNotFound reports whether the cause of err is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
