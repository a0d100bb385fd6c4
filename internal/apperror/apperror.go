// Package apperror defines the application's error taxonomy.
//
// Services return these domain errors; the HTTP layer translates them to
// status codes (see handler/response.go). Keeping the taxonomy here means
// the service layer never imports net/http.
package apperror

import "errors"

// Sentinel errors. Callers classify failures with errors.Is against these.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AppError pairs a sentinel with the short, machine-readable message the
// API returns in its {"ok":false,"error":"..."} body.
//
// Message is deliberately terse ("already exists", "invalid credentials") —
// the frontend matches on it, and it must never leak internal detail.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // stable error string sent to the client
	Field   string // optional: field causing a validation failure
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a referenced entity does not exist.
func NotFound(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}

// ValidationFailed reports malformed or missing client input.
func ValidationFailed(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

// Conflict reports a duplicate unique key (signup with an existing email).
func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

// Forbidden reports a request lacking the required admin capability.
func Forbidden() *AppError {
	return &AppError{Err: ErrForbidden, Message: "forbidden"}
}

// InvalidCredentials reports a failed login.
//
// The message is identical whether the email was unknown or the password was
// wrong — distinguishing them would let an attacker enumerate accounts.
func InvalidCredentials() *AppError {
	return &AppError{Err: ErrInvalidCredentials, Message: "invalid credentials"}
}
