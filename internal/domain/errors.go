package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrValidation               = errors.New("validation error")
	ErrConfiguration            = errors.New("server misconfiguration")
	ErrStoreUnavailable         = errors.New("history store unavailable")
	ErrInvalidAIResponseFormat  = errors.New("invalid AI response format")
	ErrInvalidResponseStructure = errors.New("invalid AI response structure")
	ErrBackendCall              = errors.New("model backend call failed")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// ErrorClass is the transport-agnostic classification of a failed request.
type ErrorClass string

const (
	ErrorClassBadRequest    ErrorClass = "bad_request"
	ErrorClassMisconfigured ErrorClass = "misconfigured"
	ErrorClassInternal      ErrorClass = "internal"
)

// Classify maps an error returned by a service to its ErrorClass.
// Client input errors and operator faults are kept apart; everything else,
// including store and model failures, is an internal failure.
func Classify(err error) ErrorClass {
	switch {
	case errors.Is(err, ErrValidation):
		return ErrorClassBadRequest
	case errors.Is(err, ErrConfiguration):
		return ErrorClassMisconfigured
	default:
		return ErrorClassInternal
	}
}
