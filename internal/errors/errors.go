// Package errors is the error taxonomy shared by the combat engine, its
// repositories and the command-facing services.
package errors

import (
	"errors"
	"fmt"
)

// Code categorizes an error so callers can decide how to surface it.
type Code string

const (
	CodeUnknown            Code = "unknown"
	CodeInvalidArgument    Code = "invalid_argument"
	CodeNotFound           Code = "not_found"
	CodeAlreadyExists      Code = "already_exists"
	CodeFailedPrecondition Code = "failed_precondition"
	CodeInternal           Code = "internal"
	CodeUnavailable        Code = "unavailable"
	CodeValidation         Code = "validation"
)

// Error is an application error carrying a code and optional metadata.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta attaches a key/value pair and returns the same error.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap adds context to err. The code of a wrapped *Error is preserved,
// anything else becomes CodeUnknown.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(appErr.Meta),
		}
	}

	return &Error{Code: CodeUnknown, Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps err and forces the resulting code.
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func NotFoundf(format string, args ...any) *Error { return Newf(CodeNotFound, format, args...) }

func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }

func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

func AlreadyExists(message string) *Error { return New(CodeAlreadyExists, message) }

func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

func FailedPrecondition(message string) *Error { return New(CodeFailedPrecondition, message) }

func FailedPreconditionf(format string, args ...any) *Error {
	return Newf(CodeFailedPrecondition, format, args...)
}

func Internal(message string) *Error { return New(CodeInternal, message) }

func Internalf(format string, args ...any) *Error { return Newf(CodeInternal, format, args...) }

func Unavailable(message string) *Error { return New(CodeUnavailable, message) }

func Unavailablef(format string, args ...any) *Error { return Newf(CodeUnavailable, format, args...) }

func Validation(message string) *Error { return New(CodeValidation, message) }

func Validationf(format string, args ...any) *Error { return Newf(CodeValidation, format, args...) }

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool { return Is(err, CodeNotFound) }

func IsInvalidArgument(err error) bool { return Is(err, CodeInvalidArgument) }

func IsAlreadyExists(err error) bool { return Is(err, CodeAlreadyExists) }

func IsFailedPrecondition(err error) bool { return Is(err, CodeFailedPrecondition) }

func IsInternal(err error) bool { return Is(err, CodeInternal) }

func IsUnavailable(err error) bool { return Is(err, CodeUnavailable) }

func IsValidation(err error) bool { return Is(err, CodeValidation) }

// GetCode returns the code of the outermost *Error in err's chain.
func GetCode(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

func GetMeta(err error) map[string]any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Meta
	}
	return nil
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}
