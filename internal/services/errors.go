package services

import (
	"errors"
	"fmt"

	"github.com/celestiaorg/echo-agent/internal/db/repos"
)

var (
	// ErrJobNotFound is returned when the requested job does not exist
	ErrJobNotFound = repos.ErrJobNotFound
	// ErrNotConfigured is returned by the paid path when payment settings are missing or invalid
	ErrNotConfigured = errors.New("payment is not configured")

	// errSettled aborts a transition whose job already left awaiting_payment
	errSettled = errors.New("job already settled")
)

// ValidationError reports a malformed or incomplete job request
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
