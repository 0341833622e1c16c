package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to create a duplicate entity
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConcurrentModification is returned when optimistic locking fails
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrNameConflict is returned when a Library create/upsert targets an
	// existing name with a different repo_url (spec.md §3: "name-conflict
	// with different repo_url is rejected").
	ErrNameConflict = errors.New("name already registered with a different repo_url")

	// ErrInvalidTransition is returned when a caller requests a ClientVuln
	// status transition other than recorded->reported, reported->confirmed,
	// or confirmed->fixed. pipeline_status has no caller-facing setter at
	// all — its transitions are engine-owned only (see DESIGN.md Open Question 3).
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError wraps field-specific validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
