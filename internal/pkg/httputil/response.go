// Package httputil provides HTTP response helper functions.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bissquit/whiskerboard/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidationMessage is the error text of every validation response.
const ValidationMessage = "There was an error validating the passed data."

// FieldError is one entry of a validation response's details.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Error writes a JSON response with {"error": message} body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// ValidationError writes a 400 response listing the failed fields.
// It understands validator.ValidationErrors and the domain validation errors;
// anything else is reported as a single detail.
func ValidationError(w http.ResponseWriter, err error) {
	JSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   ValidationMessage,
		Details: fieldErrors(err),
	})
}

func fieldErrors(err error) []FieldError {
	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		details := make([]FieldError, 0, len(validatorErrs))
		for _, e := range validatorErrs {
			details = append(details, FieldError{Field: e.Field(), Message: e.Tag()})
		}
		return details
	}

	var domainErrs domain.ValidationErrors
	if errors.As(err, &domainErrs) {
		details := make([]FieldError, 0, len(domainErrs))
		for _, e := range domainErrs {
			details = append(details, FieldError{Field: e.Field, Message: e.Message})
		}
		return details
	}

	var domainErr *domain.ValidationError
	if errors.As(err, &domainErr) {
		return []FieldError{{Field: domainErr.Field, Message: domainErr.Message}}
	}

	return []FieldError{{Message: err.Error()}}
}
