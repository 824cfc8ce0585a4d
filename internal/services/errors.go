package services

import (
	"errors"
	"fmt"

	apperrors "github.com/adaptiq/assessment-engine/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Profile specific errors
	ErrProfileNotFound = errors.New("performance profile not found")

	// Ledger specific errors
	ErrEmptySubject = errors.New("subject must not be empty")
	ErrEmptyTopic   = errors.New("topic must not be empty")

	// Session specific errors
	ErrSessionNotFound  = errors.New("quiz session not found")
	ErrSessionNotActive = errors.New("quiz session is not active")
	ErrSessionComplete  = errors.New("quiz session is already complete")
	ErrSessionNotReady  = errors.New("quiz session has not started yet")

	// Composition specific errors
	ErrGenerationFailed   = errors.New("question generation failed")
	ErrInvalidQuizRequest = errors.New("invalid quiz request")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// InvalidStateError carries the state that made an operation illegal.
type InvalidStateError struct {
	Operation string `json:"operation"`
	State     string `json:"state"`
	Message   string `json:"message"`
}

func (ise *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state for %s (session is %s): %s", ise.Operation, ise.State, ise.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewInvalidStateError(operation, state, message string) *InvalidStateError {
	return &InvalidStateError{
		Operation: operation,
		State:     state,
		Message:   message,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsInvalidArgument checks if error represents a rejected argument
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrEmptySubject) ||
		errors.Is(err, ErrEmptyTopic) ||
		errors.Is(err, ErrInvalidQuizRequest)
}

// IsInvalidState checks if error represents an operation attempted in the
// wrong session state
func IsInvalidState(err error) bool {
	if errors.Is(err, ErrSessionNotActive) ||
		errors.Is(err, ErrSessionComplete) ||
		errors.Is(err, ErrSessionNotReady) {
		return true
	}
	var ise *InvalidStateError
	return errors.As(err, &ise)
}

// IsGenerationFailure checks if error represents a failed generation round
func IsGenerationFailure(err error) bool {
	return errors.Is(err, ErrGenerationFailed)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
