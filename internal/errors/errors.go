// Package errors defines the structured application errors used at the
// scheduling service boundary and the mapping from storage errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeBadRequest indicates invalid input data.
	ErrCodeBadRequest ErrorCode = "bad_request"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeDatabase indicates a persistence failure; detail is logged, not leaked.
	ErrCodeDatabase ErrorCode = "database"
	// ErrCodeDataService indicates the data service returned a non-success
	// status or a malformed body.
	ErrCodeDataService ErrorCode = "data_service"
	// ErrCodeDataServiceUnavailable indicates the data service was unreachable
	// after all retries.
	ErrCodeDataServiceUnavailable ErrorCode = "data_service_unavailable"
	// ErrCodeCircuitOpen indicates the circuit breaker fast-failed the call.
	ErrCodeCircuitOpen ErrorCode = "circuit_open"
)

// AppError is a structured application error with a code, message, and
// optional cause. It supports errors.Is and errors.As through Unwrap.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for the error's category.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeDataService, ErrCodeDataServiceUnavailable:
		return http.StatusBadGateway
	case ErrCodeCircuitOpen:
		return http.StatusServiceUnavailable
	case ErrCodeInternal, ErrCodeDatabase:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to expose to API clients. Database
// errors are reduced to a generic message; the detail stays in logs.
func (e *AppError) PublicMessage() string {
	if e.Code == ErrCodeDatabase {
		return "Something went wrong while accessing the database."
	}
	return e.Message
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// BadRequest creates a new BadRequest error.
func BadRequest(message string) *AppError {
	return &AppError{Code: ErrCodeBadRequest, Message: message}
}

// BadRequestf creates a new BadRequest error with a formatted message.
func BadRequestf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with a formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Database wraps a persistence failure.
func Database(cause error) *AppError {
	return &AppError{Code: ErrCodeDatabase, Message: "database error", Cause: cause}
}

// DataService creates a terminal data-service error (bad status, bad body).
func DataService(message string) *AppError {
	return &AppError{Code: ErrCodeDataService, Message: message}
}

// DataServicef creates a terminal data-service error with a formatted message.
func DataServicef(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeDataService, Message: fmt.Sprintf(format, args...)}
}

// DataServiceUnavailable creates an error for a data service that stayed
// unreachable through all retry attempts.
func DataServiceUnavailable(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeDataServiceUnavailable,
		Message: "data service unavailable",
		Cause:   cause,
	}
}

// CircuitOpen creates the fast-fail error returned while the breaker is open.
func CircuitOpen() *AppError {
	return &AppError{
		Code:    ErrCodeCircuitOpen,
		Message: "Data service is currently unavailable, please try again later",
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsBadRequest checks if an error is a BadRequest error.
func IsBadRequest(err error) bool {
	return isCode(err, ErrCodeBadRequest)
}

// IsDatabase checks if an error is a Database error.
func IsDatabase(err error) bool {
	return isCode(err, ErrCodeDatabase)
}

// IsDataService checks if an error is a terminal DataService error.
func IsDataService(err error) bool {
	return isCode(err, ErrCodeDataService)
}

// IsDataServiceUnavailable checks if an error is a DataServiceUnavailable error.
func IsDataServiceUnavailable(err error) bool {
	return isCode(err, ErrCodeDataServiceUnavailable)
}

// IsCircuitOpen checks if an error is a CircuitOpen error.
func IsCircuitOpen(err error) bool {
	return isCode(err, ErrCodeCircuitOpen)
}

// IsRecoverable reports whether a processing error should park the job in
// WaitingForRetry rather than failing it terminally.
func IsRecoverable(err error) bool {
	return IsCircuitOpen(err) || IsDataServiceUnavailable(err)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
