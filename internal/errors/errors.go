// Package errors provides standardized domain errors with codes for the ReelView server.
//
// Usage:
//
//	// In clients - return typed errors
//	if resp.StatusCode == http.StatusNotFound {
//	    return errors.Remote(resp.StatusCode, "movie not found")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrRemote) {
//	    response.Error(w, err.(*errors.Error).HTTPStatus(), err.Error(), logger)
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	// CodeTransport means no response was obtained from the remote side
	// (connectivity failure, timeout, malformed response stream).
	CodeTransport Code = "TRANSPORT"
	// CodeRemote means the remote side answered with a non-success status.
	CodeRemote Code = "REMOTE"
	// CodeValidation means a payload did not match its declared schema.
	CodeValidation Code = "VALIDATION"
	// CodeConfiguration means required configuration is missing.
	CodeConfiguration Code = "CONFIGURATION"
	// CodeBadRequest means the caller's input failed validation.
	CodeBadRequest Code = "BAD_REQUEST"
	CodeNotFound   Code = "NOT_FOUND"
	CodeInternal   Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeTransport, CodeRemote, CodeValidation:
		return http.StatusBadGateway
	case CodeConfiguration:
		return http.StatusServiceUnavailable
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	// Status is the upstream HTTP status for REMOTE errors, zero otherwise.
	Status int   `json:"status,omitempty"`
	cause  error // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
// Remote errors translate their upstream status directly so a TMDB 404
// surfaces to API consumers as a 404 rather than a generic gateway error.
func (e *Error) HTTPStatus() int {
	if e.Code == CodeRemote && e.Status >= 400 && e.Status < 600 {
		return e.Status
	}
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Status:  e.Status,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Status:  e.Status,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrTransport     = &Error{Code: CodeTransport, Message: "transport failure"}
	ErrRemote        = &Error{Code: CodeRemote, Message: "remote error"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConfiguration = &Error{Code: CodeConfiguration, Message: "missing configuration"}
	ErrBadRequest    = &Error{Code: CodeBadRequest, Message: "bad request"}
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// Transport creates a transport error wrapping the underlying failure.
func Transport(err error) *Error {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	return &Error{Code: CodeTransport, Message: msg, cause: err}
}

// Transportf creates a transport error with a formatted message.
func Transportf(format string, args ...any) *Error {
	return &Error{Code: CodeTransport, Message: fmt.Sprintf(format, args...)}
}

// Remote creates a remote error carrying the upstream HTTP status.
func Remote(status int, msg string) *Error {
	return &Error{Code: CodeRemote, Message: msg, Status: status}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithPaths creates a validation error naming the violating paths.
func ValidationWithPaths(msg string, paths []string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: paths}
}

// Configuration creates a configuration error.
func Configuration(msg string) *Error {
	return &Error{Code: CodeConfiguration, Message: msg}
}

// BadRequest creates an invalid-input error.
func BadRequest(msg string) *Error {
	return &Error{Code: CodeBadRequest, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
