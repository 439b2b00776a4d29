// Package errors provides error types and handling for runadapt.
// It includes custom error types with HTTP status codes and error codes,
// and renders the uniform JSON error envelope sent to clients.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with an associated HTTP status code.
type AppError struct {
	// Code is an optional error code string for programmatic handling
	Code string
	// Message is a user-friendly error message
	Message string
	// StatusCode is the HTTP status code to return. Zero for lifecycle errors that never reach a client.
	StatusCode int
	// Cause is the underlying error (for error wrapping)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is to work with AppError.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code != "" && e.Code == t.Code
	}
	return false
}

// Predefined error codes.
const (
	// Request-level codes. These always become a response envelope.
	ErrCodeTimeout         = "TIMEOUT"
	ErrCodeHandlerFault    = "HANDLER_FAULT"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrCodeTransportError  = "TRANSPORT_ERROR"
	ErrCodeInvalidEvent    = "INVALID_EVENT"

	// Lifecycle codes. These are returned to the caller of the adapter.
	ErrCodeBindFailure  = "BIND_FAILURE"
	ErrCodeInvalidState = "INVALID_STATE"
)

// Sentinels for errors.Is comparisons against a code.
var (
	ErrTimeout         = &AppError{Code: ErrCodeTimeout}
	ErrHandlerFault    = &AppError{Code: ErrCodeHandlerFault}
	ErrPayloadTooLarge = &AppError{Code: ErrCodePayloadTooLarge}
	ErrTransport       = &AppError{Code: ErrCodeTransportError}
	ErrInvalidEvent    = &AppError{Code: ErrCodeInvalidEvent}
	ErrBind            = &AppError{Code: ErrCodeBindFailure}
	ErrState           = &AppError{Code: ErrCodeInvalidState}
)

// NewClientError creates a new client error (4xx status codes).
func NewClientError(statusCode int, code, message string, cause error) *AppError {
	if statusCode < 400 || statusCode >= 500 {
		panic(fmt.Sprintf("NewClientError called with non-client status code: %d", statusCode))
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewServerError creates a new server error (5xx status codes).
func NewServerError(statusCode int, code, message string, cause error) *AppError {
	if statusCode < 500 || statusCode >= 600 {
		panic(fmt.Sprintf("NewServerError called with non-server status code: %d", statusCode))
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// ErrGatewayTimeout creates a handler timeout error (504).
func ErrGatewayTimeout(message string, cause error) *AppError {
	return NewServerError(http.StatusGatewayTimeout, ErrCodeTimeout, message, cause)
}

// ErrHandler creates a handler fault error (500). The cause carries the handler's own error.
func ErrHandler(cause error) *AppError {
	return NewServerError(http.StatusInternalServerError, ErrCodeHandlerFault, "handler failed", cause)
}

// ErrTooLarge creates a payload too large error (413).
func ErrTooLarge(limit int64) *AppError {
	return NewClientError(http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge,
		fmt.Sprintf("request body exceeds %d bytes", limit), nil)
}

// ErrTransportRead creates a malformed or aborted request stream error (400).
func ErrTransportRead(cause error) *AppError {
	return NewClientError(http.StatusBadRequest, ErrCodeTransportError, "failed to read request body", cause)
}

// ErrBadEvent creates an invalid inbound event error (400).
func ErrBadEvent(message string, cause error) *AppError {
	return NewClientError(http.StatusBadRequest, ErrCodeInvalidEvent, message, cause)
}

// ErrBindFailure creates a listening socket acquisition error.
func ErrBindFailure(addr string, cause error) *AppError {
	return &AppError{Code: ErrCodeBindFailure, Message: "failed to bind " + addr, Cause: cause}
}

// ErrInvalidState creates an adapter lifecycle state error.
func ErrInvalidState(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidState, Message: message}
}

// GetStatusCode extracts the HTTP status code from an error.
// Returns 500 if the error is not an AppError or carries no status.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetErrorCode extracts the error code from an error.
// Returns empty string if the error is not an AppError.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetErrorMessage extracts a user-friendly message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetErrorDetails extracts detailed error information including the underlying cause.
// Returns the underlying error message if available, otherwise returns the main error message.
func GetErrorDetails(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			return appErr.Cause.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
