package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// AppError represents an application-specific error
type AppError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Cause     error  `json:"-"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Operation string `json:"operation,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code, message string, cause error) *AppError {
	_, file, line, _ := runtime.Caller(1)
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
		File:    file,
		Line:    line,
	}
}

// WithOperation adds operation context to the error
func (e *AppError) WithOperation(operation string) *AppError {
	e.Operation = operation
	return e
}

// WithDetails adds additional details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// Common error codes
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeExternalService = "EXTERNAL_SERVICE_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeDatabaseError   = "DATABASE_ERROR"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Common error constructors
func NotFound(message string, cause error) *AppError {
	return NewAppError(ErrCodeNotFound, message, cause)
}

func ValidationError(message string, cause error) *AppError {
	return NewAppError(ErrCodeValidationError, message, cause)
}

func Conflict(message string, cause error) *AppError {
	return NewAppError(ErrCodeConflict, message, cause)
}

func ExternalService(message string, cause error) *AppError {
	return NewAppError(ErrCodeExternalService, message, cause)
}

func Unauthorized(message string, cause error) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, cause)
}

func Forbidden(message string, cause error) *AppError {
	return NewAppError(ErrCodeForbidden, message, cause)
}

func DatabaseError(message string, cause error) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, cause)
}

func InternalError(message string, cause error) *AppError {
	return NewAppError(ErrCodeInternalError, message, cause)
}

// CodeOf extracts the application error code from any error chain.
// Unknown errors are reported as INTERNAL_ERROR.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// IsNotFound reports whether the error chain contains a NOT_FOUND error
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsConflict reports whether the error chain contains a CONFLICT error
func IsConflict(err error) bool {
	return CodeOf(err) == ErrCodeConflict
}

// IsValidation reports whether the error chain contains a VALIDATION_ERROR
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidationError
}
