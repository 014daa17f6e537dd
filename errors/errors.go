package errors

import (
	"fmt"
)

// ErrorCode identifies the failure category for logging and exit handling
type ErrorCode string

const (
	ErrorCode_INTERNAL        ErrorCode = "INTERNAL"
	ErrorCode_CONFIG_INVALID  ErrorCode = "CONFIG_INVALID"
	ErrorCode_GONG_API_FAILED ErrorCode = "GONG_API_FAILED"
	ErrorCode_RATE_LIMITED    ErrorCode = "RATE_LIMITED"
	ErrorCode_STORAGE_FAILED  ErrorCode = "STORAGE_FAILED"
	ErrorCode_STATE_FAILED    ErrorCode = "STATE_FAILED"
)

func (c ErrorCode) String() string {
	return string(c)
}

// AppError is the application error type carried across module boundaries
type AppError struct {
	Raw     error
	Code    ErrorCode
	Message string
	Details map[string]string
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped error to errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func ErrInternal(err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_INTERNAL,
		Message: "Internal error",
	}
}

func ErrConfigInvalid(err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_CONFIG_INVALID,
		Message: "Invalid configuration",
	}
}

func ErrGongAPIFailed(operation string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_GONG_API_FAILED,
		Message: fmt.Sprintf("Gong API call failed: %s", operation),
	}
}

func ErrRateLimited(err error, retryAfter int) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_RATE_LIMITED,
		Message: "Gong API rate limit exhausted",
	}.WithDetail("retry_after", fmt.Sprintf("%d", retryAfter))
}

func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_STORAGE_FAILED,
		Message: fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

func ErrStateFailed(operation string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_STATE_FAILED,
		Message: fmt.Sprintf("Sync state operation failed: %s", operation),
	}
}
