package domain

import (
	"errors"
	"strings"
)

// ErrValidation is the sentinel matched by every ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError describes semantically invalid input.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is reports ErrValidation as a match so callers can use errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationErrors collects several validation failures.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is reports ErrValidation as a match so callers can use errors.Is.
func (es ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// OrNil returns nil when es is empty.
func (es ValidationErrors) OrNil() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// MergeValidation flattens the validation failures in errs into one error.
// The first error that is not a validation failure is returned unchanged.
func MergeValidation(errs ...error) error {
	var out ValidationErrors
	for _, err := range errs {
		if err == nil {
			continue
		}
		var many ValidationErrors
		var one *ValidationError
		switch {
		case errors.As(err, &many):
			out = append(out, many...)
		case errors.As(err, &one):
			out = append(out, one)
		default:
			return err
		}
	}
	return out.OrNil()
}
