package errors

import "net/http"

// HTTPError represents an error with an associated HTTP status code and,
// for validation failures, per-field messages.
type HTTPError struct {
	Code    int
	Message string
	Fields  map[string]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

// Helpers for common errors
func NewNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// NewUnprocessable flags a business-rule violation (double booking, illegal
// state transition) as a 422.
func NewUnprocessable(message string) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message)
}

// NewValidation reports field-level validation failures as a 422.
func NewValidation(fields map[string]string) *HTTPError {
	return &HTTPError{
		Code:    http.StatusUnprocessableEntity,
		Message: "validation failed",
		Fields:  fields,
	}
}

func NewUnauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message)
}

func NewForbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message)
}
