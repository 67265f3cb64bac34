// Package apperror defines the domain error taxonomy shared by the service
// and handler layers. Services return these; handlers translate them to HTTP
// status codes and JSON bodies in one place.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")    // bad login credentials
	ErrUnauthenticated = errors.New("unauthenticated") // missing/invalid bearer token
)

// AppError carries a sentinel (for errors.Is checks) plus the human-readable
// detail the handler should surface to the client.
//
// Fields is populated for validation errors: one entry per offending input
// field, each with the list of rule messages for that field. The shape mirrors
// what the API returns under "errors".
type AppError struct {
	Err     error               // sentinel, one of the vars above
	Message string              // human-readable error message
	Fields  map[string][]string // per-field validation messages, may be nil
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource. The message is surfaced verbatim in
// the 404 body, so callers pass the display name, e.g. "Post".
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// ValidationFailed reports a single failed rule on a single field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Fields:  map[string][]string{field: {message}},
	}
}

// ValidationErrors bundles the full per-field message map produced by a
// validation pass. The map must be non-empty.
func ValidationErrors(fields map[string][]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "the given data was invalid",
		Fields:  fields,
	}
}

func Conflict(resource, detail string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict: %s", resource, detail),
	}
}

// Unauthorized is returned for failed login attempts. The message is
// deliberately identical for unknown email and wrong password.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "Unauthorized",
	}
}

// Unauthenticated is returned when a protected route is hit without a valid
// bearer token.
func Unauthenticated() *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: "Unauthenticated.",
	}
}
