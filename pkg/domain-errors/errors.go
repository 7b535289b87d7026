// Package domainerrors carries the error taxonomy shared by services and
// transport. Services attach a Code to every error they return; the HTTP
// layer translates codes to status lines without inspecting error text.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error into one of the caller-visible outcomes.
type Code string

const (
	// CodeBadRequest marks malformed or incomplete input (missing required
	// fields, unknown enum values).
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks absent, malformed, expired, or revoked
	// credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an authenticated caller that is not permitted to
	// perform the operation (role, ownership, or blocked-account denials).
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks a lookup whose id matched no record.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a state precondition violation, e.g. claiming a
	// request another donor already claimed.
	CodeConflict Code = "conflict"
	// CodeInternal marks infrastructure failures the caller cannot act on.
	CodeInternal Code = "internal_error"
)

// Error is a domain error with a classification code. The wrapped cause, if
// any, is preserved for errors.Is/errors.As but never shown to callers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an infrastructure error so the cause
// survives for logging while callers only see the classification.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Load extracts the domain error from err, defaulting to an internal error so
// transport always has a code to translate.
func Load(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return &Error{Code: CodeInternal, Message: "internal error", cause: err}
}

// ToHTTPStatus maps a code onto the HTTP status line used by the JSON API.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
