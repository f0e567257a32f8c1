package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the closed taxonomy of failures a workflow can report.
type ErrorKind string

const (
	KindValidation           ErrorKind = "VALIDATION_FAILED"
	KindConflict             ErrorKind = "CONFLICT"
	KindInvalidCredentials   ErrorKind = "INVALID_CREDENTIALS"
	KindVerificationRequired ErrorKind = "VERIFICATION_REQUIRED"
	KindDeactivated          ErrorKind = "DEACTIVATED"
	KindForbidden            ErrorKind = "FORBIDDEN"
	KindNotFound             ErrorKind = "NOT_FOUND"
	KindInvalidReference     ErrorKind = "INVALID_REFERENCE"
	KindInvalidCode          ErrorKind = "INVALID_OR_EXPIRED_CODE"
	KindInvalidToken         ErrorKind = "INVALID_OR_EXPIRED_TOKEN"
	KindInternal             ErrorKind = "INTERNAL"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the workflow-level error. Data carries kind-specific payload the
// client needs to act on (e.g. the user id on VERIFICATION_REQUIRED).
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
	Data    map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// HTTPStatus maps the taxonomy to response codes.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindInvalidReference, KindInvalidCode, KindInvalidToken:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindVerificationRequired, KindDeactivated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// AsError unwraps a workflow error if err carries one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ValidationError builds a VALIDATION_FAILED error from field descriptors.
func ValidationError(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}
