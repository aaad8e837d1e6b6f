// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown        = "UNKNOWN_ERROR"
	CodeConfigError    = "CONFIG_ERROR"
	CodeResourceError  = "RESOURCE_ERROR"
	CodeTransportError = "TRANSPORT_ERROR"
	CodeInvariantError = "INVARIANT_ERROR"
	CodeDatabaseError  = "DATABASE_ERROR"
	CodeUploadError    = "UPLOAD_ERROR"
	CodeDownloadError  = "DOWNLOAD_ERROR"
	CodeParseError     = "PARSE_ERROR"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeTimeout        = "TIMEOUT_ERROR"
	CodeNotFound       = "NOT_FOUND"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances, one per taxonomy class from the error handling design:
// configuration errors are caught before the sort call ever runs, resource and
// transport errors abort the rank group mid-run, invariant errors surface from
// the advisory post-sort validator.
var (
	ErrConfigError    = New(CodeConfigError, "configuration error")
	ErrResourceError  = New(CodeResourceError, "resource allocation failed")
	ErrTransportError = New(CodeTransportError, "message transport failed")
	ErrInvariantError = New(CodeInvariantError, "invariant violation")
	ErrDatabaseError  = New(CodeDatabaseError, "database error")
	ErrUploadError    = New(CodeUploadError, "upload error")
	ErrDownloadError  = New(CodeDownloadError, "download error")
	ErrParseError     = New(CodeParseError, "parse error")
	ErrInvalidInput   = New(CodeInvalidInput, "invalid input")
	ErrTimeout        = New(CodeTimeout, "operation timeout")
	ErrNotFound       = New(CodeNotFound, "resource not found")
)

// IsConfigError checks if the error is a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigError)
}

// IsResourceError checks if the error is a resource allocation error.
func IsResourceError(err error) bool {
	return errors.Is(err, ErrResourceError)
}

// IsTransportError checks if the error is a transport error.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransportError)
}

// IsInvariantError checks if the error is an invariant violation reported by the validator.
func IsInvariantError(err error) bool {
	return errors.Is(err, ErrInvariantError)
}

// IsDatabaseError checks if the error is a database error.
func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabaseError)
}

// IsUploadError checks if the error is an upload error.
func IsUploadError(err error) bool {
	return errors.Is(err, ErrUploadError)
}

// IsDownloadError checks if the error is a download error.
func IsDownloadError(err error) bool {
	return errors.Is(err, ErrDownloadError)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Fatal reports whether a core error class aborts the entire rank group rather
// than being handled locally. Resource and transport errors are always fatal;
// configuration errors are fatal before any rank enters the sort call;
// invariant errors are advisory and never fatal.
func Fatal(err error) bool {
	code := GetErrorCode(err)
	return code == CodeResourceError || code == CodeTransportError || code == CodeConfigError
}
