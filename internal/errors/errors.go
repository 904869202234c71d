// Package errors provides standardized domain errors with codes for the Swasti API.
//
// Usage:
//
//	// In services and stores - return typed errors
//	if !verified {
//	    return errors.EmailUnverified("please verify your email address before logging in")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotAuthenticated) {
//	    response.Unauthorized(w, err.Error(), logger)
//	    return
//	}
//
//	// Or branch on the Code directly
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeInvalidCredentials:
//	        ...
//	    }
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
	CodeNotFound           Code = "NOT_FOUND"
	CodeValidation         Code = "VALIDATION"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeEmailUnverified    Code = "EMAIL_UNVERIFIED"
	CodeAlreadyRegistered  Code = "ALREADY_REGISTERED"
	CodeNotAuthenticated   Code = "NOT_AUTHENTICATED"
	CodeService            Code = "SERVICE_ERROR"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeInvalidCredentials, CodeNotAuthenticated:
		return http.StatusUnauthorized
	case CodeEmailUnverified:
		return http.StatusForbidden
	case CodeAlreadyRegistered:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error  // unexported, for wrapping
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
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrEmailUnverified    = &Error{Code: CodeEmailUnverified, Message: "email not verified"}
	ErrAlreadyRegistered  = &Error{Code: CodeAlreadyRegistered, Message: "already registered"}
	ErrNotAuthenticated   = &Error{Code: CodeNotAuthenticated, Message: "not authenticated"}
	ErrService            = &Error{Code: CodeService, Message: "service error"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// InvalidCredentials creates an invalid credentials error.
func InvalidCredentials(msg string) *Error {
	return &Error{Code: CodeInvalidCredentials, Message: msg}
}

// EmailUnverified creates an email unverified error.
func EmailUnverified(msg string) *Error {
	return &Error{Code: CodeEmailUnverified, Message: msg}
}

// AlreadyRegistered creates an already registered error.
func AlreadyRegistered(msg string) *Error {
	return &Error{Code: CodeAlreadyRegistered, Message: msg}
}

// NotAuthenticated creates a not authenticated error.
func NotAuthenticated(msg string) *Error {
	return &Error{Code: CodeNotAuthenticated, Message: msg}
}

// Service creates a service error.
func Service(msg string) *Error {
	return &Error{Code: CodeService, Message: msg}
}

// Servicef creates a service error with formatted message.
func Servicef(format string, args ...any) *Error {
	return &Error{Code: CodeService, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// FromErr coerces any error into a domain error. Known domain errors pass
// through unchanged; anything else becomes a SERVICE_ERROR wrapping the cause.
func FromErr(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeService, Message: err.Error(), cause: err}
}
