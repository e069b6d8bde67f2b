package service

import "errors"

var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller is known but the policy denies the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated indicates an operation needs a caller and none was given.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError represents a bad-request condition (HTTP 400).
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError represents a duplicate unique field.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// reasonError carries a caller-facing message while matching a sentinel with errors.Is.
type reasonError struct {
	kind   error
	reason string
}

func (e *reasonError) Error() string { return e.reason }
func (e *reasonError) Unwrap() error { return e.kind }

func notFound(reason string) error {
	return &reasonError{kind: ErrNotFound, reason: reason}
}

func forbidden(reason string) error {
	return &reasonError{kind: ErrForbidden, reason: reason}
}

func invalidField(field, message string) error {
	return &ValidationError{
		Message: "Validation failed",
		Fields:  []FieldError{{Field: field, Message: message}},
	}
}
