// Package errors defines the storefront's error taxonomy. Every failure that reaches
// a caller is an AppError, optionally wrapped with its cause via github.com/pkg/errors.
package errors

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches any BaseError carrying the same business code, so errors derived
// through WithDetails still satisfy errors.Is against the predefined values.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Session-related errors
	ErrUnauthenticated = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHENTICATED",
		"Please sign in or register to continue",
		"",
	)

	ErrGuestAccessDenied = NewBaseError(
		http.StatusServiceUnavailable,
		"GUEST_ACCESS_DENIED",
		"Guest browsing is unavailable right now",
		"",
	)

	// Identity provider errors
	ErrAuthFailed = NewBaseError(
		http.StatusUnauthorized,
		"AUTH_FAILED",
		"Authentication failed",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Incorrect email or password. Please try again.",
		"",
	)

	ErrEmailInUse = NewBaseError(
		http.StatusConflict,
		"EMAIL_IN_USE",
		"This email is already registered",
		"",
	)

	ErrWeakPassword = NewBaseError(
		http.StatusBadRequest,
		"WEAK_PASSWORD",
		"Password is too weak",
		"",
	)

	// Remote store errors
	ErrRemoteWriteFailed = NewBaseError(
		http.StatusBadGateway,
		"REMOTE_WRITE_FAILED",
		"The change could not be saved. Please try again.",
		"",
	)

	ErrRemoteSubscriptionFailed = NewBaseError(
		http.StatusBadGateway,
		"REMOTE_SUBSCRIPTION_FAILED",
		"Live updates are temporarily unavailable",
		"",
	)

	ErrPartialBulkFailure = NewBaseError(
		http.StatusBadGateway,
		"PARTIAL_BULK_FAILURE",
		"The catalog operation stopped partway. Please run it again.",
		"",
	)

	// Checkout errors
	ErrCartEmpty = NewBaseError(
		http.StatusBadRequest,
		"CART_EMPTY",
		"Your cart is empty",
		"",
	)

	// General errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// Wrap returns an AppError rendered as base that still unwraps to cause.
func Wrap(base *BaseError, cause error) error {
	return errors.WithStack(&wrappedError{base: base, cause: cause})
}

// RemoteWriteError attaches the store's rejection to ErrRemoteWriteFailed.
func RemoteWriteError(err error, operation string) error {
	return errors.Wrap(
		&wrappedError{base: ErrRemoteWriteFailed.WithDetails(operation), cause: err},
		operation,
	)
}

// PartialBulkError attaches the failure that stopped a bulk workflow.
func PartialBulkError(err error, details string) error {
	return errors.WithStack(&wrappedError{base: ErrPartialBulkFailure.WithDetails(details), cause: err})
}

// wrappedError is an AppError that also exposes its underlying cause.
type wrappedError struct {
	base  *BaseError
	cause error
}

func (e *wrappedError) Error() string {
	return e.base.Error() + ": " + e.cause.Error()
}

func (e *wrappedError) Unwrap() []error {
	return []error{e.base, e.cause}
}

func (e *wrappedError) HTTPCode() int     { return e.base.HTTPCode() }
func (e *wrappedError) ErrorCode() string { return e.base.ErrorCode() }
func (e *wrappedError) Message() string   { return e.base.Message() }
func (e *wrappedError) Details() string   { return e.base.Details() }
