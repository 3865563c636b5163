// Package errors is the dashboard's single structured error type.  The HTTP
// layer, the CLI and the logs all classify a failure by its ErrorCode.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const maxFrames = 32

// AppError carries a code, a message and an optional detail and cause.
//
//	return errors.New(errors.ErrCodeNoDataForSelection, "no indicator record").
//		WithDetail("state=SP year=2019")
type AppError struct {
	Code    ErrorCode
	Message string
	// Detail names the offending input (selection, column, object key).
	Detail string
	Cause  error

	pcs []uintptr
}

// Error renders "[CODE] message" or "[CODE] message: detail".
func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(string(e.Code))
	sb.WriteString("] ")
	sb.WriteString(e.Message)
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithDetail returns a copy with Detail set.  A nil receiver stays nil.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	c := *e
	c.Detail = detail
	return &c
}

// WithCause returns a copy with Cause set.  A nil receiver stays nil.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	c := *e
	c.Cause = err
	return &c
}

// StackTrace formats the frames recorded at construction, skipping the Go
// runtime.
func (e *AppError) StackTrace() string {
	if e == nil || len(e.pcs) == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(e.pcs)
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "runtime.") {
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		}
		if !more {
			return sb.String()
		}
	}
}

func callers() []uintptr {
	pcs := make([]uintptr, maxFrames)
	// Skip runtime.Callers, callers and the exported constructor.
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}

// New builds an AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, pcs: callers()}
}

// Newf builds an AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), pcs: callers()}
}

// Wrap attaches code and message to err; a nil err yields nil.  CodeUnknown
// inherits the code of the nearest AppError in err's chain.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		code = GetCode(err)
	}
	return &AppError{Code: code, Message: message, Cause: err, pcs: callers()}
}

// IsCode reports whether any AppError in err's chain carries code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for errors.As(err, &ae) {
		if ae.Code == code {
			return true
		}
		err = ae.Cause
	}
	return false
}

// IsNotFound matches ErrCodeNotFound and ErrCodeNoDataForSelection.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeNotFound) || IsCode(err, ErrCodeNoDataForSelection)
}

// IsValidation matches ErrCodeValidation and ErrCodeBadRequest.
func IsValidation(err error) bool {
	return IsCode(err, ErrCodeValidation) || IsCode(err, ErrCodeBadRequest)
}

// GetCode returns the code of the outermost AppError, CodeUnknown when there
// is none, and "" for a nil err.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

//Personal.AI order the ending
