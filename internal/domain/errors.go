package domain

import (
	"errors" // Sentinel errors
	"fmt"    // Error wrapping
)

// Error classes shared by services and handlers
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
)

// ConflictError names the unique field that clashed
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Unwrap lets errors.Is(err, ErrConflict) match
func (e *ConflictError) Unwrap() error { return ErrConflict }

// Invalid wraps ErrValidation with a client-facing message
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with a client-facing message
func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// Forbidden wraps ErrForbidden with a client-facing message
func Forbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

// Conflict wraps ErrConflict with a client-facing message
func Conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}
