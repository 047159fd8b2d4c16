package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Dataset errors
	ErrDatasetEmpty     = errors.New("dataset contains no records")
	ErrColumnMissing    = errors.New("required column missing")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Recording errors
	ErrSessionNotFound = errors.New("session not found")
	ErrArenaUnset      = errors.New("arena type is unset")
)

// Error constructors with context
func NewColumnMissingError(column string) error {
	return fmt.Errorf("%w: %s", ErrColumnMissing, column)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewSessionNotFoundError(session string) error {
	return fmt.Errorf("%w: %s", ErrSessionNotFound, session)
}

// Error checking helpers
func IsDatasetError(err error) bool {
	return errors.Is(err, ErrDatasetEmpty) ||
		errors.Is(err, ErrColumnMissing) ||
		errors.Is(err, ErrInsufficientData)
}
