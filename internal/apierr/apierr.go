// Package apierr defines the API error taxonomy and the uniform JSON error
// envelope {error, code?, details?} shared by middleware and handlers.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Error codes carried in the "code" field of the envelope.
const (
	CodeTokenMissing       = "AUTH_TOKEN_MISSING"
	CodeTokenInvalid       = "AUTH_TOKEN_INVALID"
	CodeTokenExpired       = "AUTH_TOKEN_EXPIRED"
	CodeTokenRevoked       = "AUTH_TOKEN_REVOKED"
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeForbidden          = "AUTH_FORBIDDEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// MessageInternal is the generic message for 500 responses. Internal details never reach clients.
const MessageInternal = "internal server error"

// FieldError is one entry of the "details" array of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an error that knows how it is rendered over HTTP.
type Error struct {
	Status  int          `json:"-"`
	Message string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Validation reports malformed or out-of-range input.
func Validation(details ...FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "invalid input", Code: CodeValidation, Details: details}
}

// BadRequest reports input that could not be parsed at all (e.g. invalid JSON).
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Code: CodeValidation}
}

// Unauthorized reports a 401 with the given code.
func Unauthorized(code, msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg, Code: code}
}

// Forbidden reports an authenticated caller lacking permission.
func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "insufficient permissions"
	}
	return &Error{Status: http.StatusForbidden, Message: msg, Code: CodeForbidden}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg, Code: CodeNotFound}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg, Code: CodeConflict}
}

func TooManyRequests() *Error {
	return &Error{Status: http.StatusTooManyRequests, Message: "too many requests", Code: CodeRateLimited}
}

// PayloadTooLarge reports a request body over the configured limit.
func PayloadTooLarge() *Error {
	return &Error{Status: http.StatusRequestEntityTooLarge, Message: "request body too large", Code: CodeValidation}
}

func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Message: MessageInternal}
}

// Write renders err as the JSON envelope. Errors that are not *Error are logged
// and reported as 500 without leaking their text.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		attrs := []any{"error", err}
		if r != nil {
			attrs = append(attrs, "method", r.Method, "path", r.URL.Path)
		}
		slog.Error("unhandled error", attrs...)
		apiErr = Internal()
	}
	JSON(w, apiErr.Status, apiErr)
}

// JSON writes v as a JSON body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
