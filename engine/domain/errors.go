package domain

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable is returned when the external data source cannot be
// reached or yields no usable rows. It is fatal at startup.
var ErrDataUnavailable = errors.New("data unavailable")

// Sentinel errors for rejected filter selections and records.
var (
	ErrUnknownOrigin    = errors.New("unknown origin")
	ErrUnknownCylinders = errors.New("unknown cylinder count")
	ErrYearOutOfRange   = errors.New("year out of range")
	ErrInvalidYearRange = errors.New("invalid year range")
	ErrInvalidVehicle   = errors.New("invalid vehicle")
)

// ValidationError wraps a sentinel with context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}

// Unavailable wraps err as ErrDataUnavailable, keeping the cause in the chain.
func Unavailable(source string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s returned no rows", ErrDataUnavailable, source)
	}
	return fmt.Errorf("%w: %s: %w", ErrDataUnavailable, source, err)
}
