package models

import "errors"

var (
	// ErrNotFound is returned by stores when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyMember is returned when a user already holds a membership in the natillera.
	ErrAlreadyMember = errors.New("ya eres miembro de esta natillera")

	// ErrInvalidCode is returned when an invitation code matches no natillera.
	ErrInvalidCode = errors.New("código de invitación inválido")

	// ErrCodeTaken is returned when an invitation code is already in use.
	ErrCodeTaken = errors.New("invitation code already in use")
)

// ValidationError describes invalid user input, caught before any backend call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// invalid is a shorthand constructor used by the Validate methods.
func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
