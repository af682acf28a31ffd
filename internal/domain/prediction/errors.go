package prediction

import (
	"fmt"

	"lungrisk/pkg/errors"
)

// UnknownModelError is returned when the requested model is not loaded.
// Available lists the names that were loaded at the time of the call.
type UnknownModelError struct {
	Name      string
	Available []string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("Model %q not found", e.Name)
}

// Unwrap classifies the error as a client error.
func (e *UnknownModelError) Unwrap() []error {
	return []error{errors.ErrInvalidInput, errors.ErrModelNotLoaded}
}
