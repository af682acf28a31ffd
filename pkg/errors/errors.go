package errors

import (
	"errors"
	"fmt"
)

// Error classes shared by the service layers. HTTP handlers map them onto
// status codes, so every error that leaves a service should wrap one of them.

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrUnavailable indicates a dependency is unavailable
	ErrUnavailable = errors.New("service unavailable")

	// ErrRateLimitExceeded indicates the request budget is exhausted
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Model errors

var (
	// ErrModelNotLoaded indicates the requested model is absent from the cache
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrModelArtifact indicates a model artifact could not be decoded
	ErrModelArtifact = errors.New("invalid model artifact")

	// ErrUnsupportedFile indicates an uploaded document has the wrong type
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error returns the message in the form clients see it.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap classifies every validation error as invalid input.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// MultiError wraps multiple errors
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("multiple errors (%d): %v", len(m.Errors), m.Errors[0])
}

// Add adds an error to the list
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// ToError returns the MultiError as an error, or nil if no errors
func (m *MultiError) ToError() error {
	if !m.HasErrors() {
		return nil
	}
	return m
}

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Join combines a classification sentinel with a concrete cause so both
// match errors.Is.
func Join(class error, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", class, cause)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
