// Package contextutils provides error handling utilities and standardized error types
// for consistent error management across the translation application.
package contextutils

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Translation client error codes

	// ErrorCodeBadURL indicates that the translation request URL could not be constructed
	ErrorCodeBadURL ErrorCode = "BAD_URL"
	// ErrorCodeBadResponse indicates a transport-level failure talking to the translation API
	ErrorCodeBadResponse ErrorCode = "BAD_RESPONSE"
	// ErrorCodeInvalidData indicates that the translation API returned an empty or missing body
	ErrorCodeInvalidData ErrorCode = "INVALID_DATA"
	// ErrorCodeDecodeError indicates that the response body did not match the expected shape
	ErrorCodeDecodeError ErrorCode = "DECODE_ERROR"

	// Validation error codes

	// ErrorCodeInvalidInput indicates that the provided input is invalid
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorCodeMissingRequired indicates that a required field is missing
	ErrorCodeMissingRequired ErrorCode = "MISSING_REQUIRED_FIELD"
	// ErrorCodeValidationFailed indicates that validation has failed
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Service error codes

	// ErrorCodeServiceUnavailable indicates that the service is temporarily unavailable
	ErrorCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrorCodeTimeout indicates that a request has timed out
	ErrorCodeTimeout ErrorCode = "REQUEST_TIMEOUT"
	// ErrorCodeInternalError indicates an internal error
	ErrorCodeInternalError ErrorCode = "INTERNAL_SERVER_ERROR"
	// ErrorCodeClosed indicates that a component has already been shut down
	ErrorCodeClosed ErrorCode = "CLOSED"
	// ErrorCodeConfigInvalid indicates that the loaded configuration is invalid
	ErrorCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
)

// SeverityLevel represents the severity of an error for logging and monitoring
type SeverityLevel string

const (
	// SeverityDebug indicates debug-level errors for development
	SeverityDebug SeverityLevel = "debug"
	// SeverityInfo indicates informational errors
	SeverityInfo SeverityLevel = "info"
	// SeverityWarn indicates warning-level errors
	SeverityWarn SeverityLevel = "warn"
	// SeverityError indicates error-level issues
	SeverityError SeverityLevel = "error"
	// SeverityFatal indicates fatal errors that require immediate attention
	SeverityFatal SeverityLevel = "fatal"
)

// AppError represents a structured error with code, severity, and context
type AppError struct {
	Code     ErrorCode
	Severity SeverityLevel
	Message  string
	Details  string
	Cause    error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for errors.Is
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Code == appErr.Code
	}
	return false
}

// Error types for consistent error handling with associated codes and severity
var (
	// Translation client errors
	ErrBadURL = &AppError{
		Code:     ErrorCodeBadURL,
		Severity: SeverityError,
		Message:  "Translation request URL could not be constructed",
	}

	ErrBadResponse = &AppError{
		Code:     ErrorCodeBadResponse,
		Severity: SeverityWarn,
		Message:  "Translation request failed",
	}

	ErrInvalidData = &AppError{
		Code:     ErrorCodeInvalidData,
		Severity: SeverityWarn,
		Message:  "Translation response is empty",
	}

	ErrDecodeError = &AppError{
		Code:     ErrorCodeDecodeError,
		Severity: SeverityError,
		Message:  "Translation response could not be decoded",
	}

	// Validation errors
	ErrInvalidInput = &AppError{
		Code:     ErrorCodeInvalidInput,
		Severity: SeverityWarn,
		Message:  "Invalid input",
	}

	ErrMissingRequired = &AppError{
		Code:     ErrorCodeMissingRequired,
		Severity: SeverityWarn,
		Message:  "Missing required field",
	}

	ErrValidationFailed = &AppError{
		Code:     ErrorCodeValidationFailed,
		Severity: SeverityWarn,
		Message:  "Validation failed",
	}

	// Service errors
	ErrServiceUnavailable = &AppError{
		Code:     ErrorCodeServiceUnavailable,
		Severity: SeverityError,
		Message:  "Service unavailable",
	}

	ErrTimeout = &AppError{
		Code:     ErrorCodeTimeout,
		Severity: SeverityWarn,
		Message:  "Request timeout",
	}

	ErrInternalError = &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  "Internal error",
	}

	ErrClosed = &AppError{
		Code:     ErrorCodeClosed,
		Severity: SeverityInfo,
		Message:  "Component is closed",
	}

	ErrConfigInvalid = &AppError{
		Code:     ErrorCodeConfigInvalid,
		Severity: SeverityFatal,
		Message:  "Configuration invalid",
	}
)

// NewAppError creates a new AppError with the specified code, severity, message and details
func NewAppError(code ErrorCode, severity SeverityLevel, message, details string) *AppError {
	return &AppError{
		Code:     code,
		Severity: severity,
		Message:  message,
		Details:  details,
	}
}

// NewAppErrorWithCause creates a new AppError with an underlying cause
func NewAppErrorWithCause(code ErrorCode, severity SeverityLevel, message, details string, cause error) *AppError {
	return &AppError{
		Code:     code,
		Severity: severity,
		Message:  message,
		Details:  details,
		Cause:    cause,
	}
}

// WrapError wraps an error with additional context, preserving AppError structure if possible
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:     appErr.Code,
			Severity: appErr.Severity,
			Message:  context,
			Details:  appErr.Error(),
			Cause:    err,
		}
	}

	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  context,
		Details:  err.Error(),
		Cause:    err,
	}
}

// WrapErrorf wraps an error with formatted context, preserving AppError structure if possible
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	// %w needs fmt.Errorf so the cause chain stays intact
	if strings.Contains(format, "%w") {
		wrappedErr := fmt.Errorf(format, args...)

		if appErr, ok := err.(*AppError); ok {
			return &AppError{
				Code:     appErr.Code,
				Severity: appErr.Severity,
				Message:  wrappedErr.Error(),
				Details:  appErr.Error(),
				Cause:    wrappedErr,
			}
		}

		return &AppError{
			Code:     ErrorCodeInternalError,
			Severity: SeverityError,
			Message:  wrappedErr.Error(),
			Details:  err.Error(),
			Cause:    wrappedErr,
		}
	}

	return WrapError(err, fmt.Sprintf(format, args...))
}

// ErrorWithContextf creates a new error with formatted context
func ErrorWithContextf(format string, args ...interface{}) error {
	return &AppError{
		Code:     ErrorCodeInternalError,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
	}
}

// GetErrorCode returns the error code from an error if it's an AppError, otherwise returns a default code
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrorCodeInternalError
}

// GetErrorSeverity returns the severity level from an error if it's an AppError, otherwise returns error
func GetErrorSeverity(err error) SeverityLevel {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Severity
	}
	return SeverityError
}

// IsRetryable reports whether an error is likely transient. The orchestrator never retries on
// its own; this is exposed for callers that decide to.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case ErrorCodeTimeout, ErrorCodeServiceUnavailable, ErrorCodeBadResponse:
			return appErr.Severity != SeverityFatal
		}
	}
	return false
}

// IsTranslationError reports whether err belongs to the translation client taxonomy
func IsTranslationError(err error) bool {
	switch GetErrorCode(err) {
	case ErrorCodeBadURL, ErrorCodeBadResponse, ErrorCodeInvalidData, ErrorCodeDecodeError:
		return true
	}
	return false
}

// GetErrorLocalizedMessage returns a human-readable message for the error in the given locale.
// Errors outside the AppError taxonomy fall back to their own text.
func GetErrorLocalizedMessage(err error, locale string) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return GetLocalizedMessage(appErr.Code, ParseLocale(locale))
	}
	return err.Error()
}

// ToJSON converts an AppError to a JSON-serializable structure for API responses
func (e *AppError) ToJSON() map[string]interface{} {
	result := map[string]interface{}{
		"code":     string(e.Code),
		"message":  e.Message,
		"severity": string(e.Severity),
		"error":    e.Message,
	}

	if e.Details != "" {
		result["details"] = e.Details
	}

	result["retryable"] = IsRetryable(e)

	if e.Cause != nil {
		switch e.Severity {
		case SeverityError, SeverityFatal:
			result["cause"] = e.Cause.Error()
		}
	}

	return result
}

// ToJSONWithLocale converts an AppError to a JSON-serializable structure with localized messages
func (e *AppError) ToJSONWithLocale(locale string) map[string]interface{} {
	result := e.ToJSON()
	localizedMessage := GetLocalizedMessage(e.Code, ParseLocale(locale))
	result["message"] = localizedMessage
	result["error"] = localizedMessage
	return result
}
