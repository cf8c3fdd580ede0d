package model

import "fmt"

// ErrorCode classifies the failures a report can raise.
type ErrorCode string

const (
	// ErrCodePath indicates an invalid output path or an unopenable sink.
	ErrCodePath ErrorCode = "PATH"
	// ErrCodeConfig indicates an out-of-range or inconsistent setting.
	ErrCodeConfig ErrorCode = "CONFIG"
	// ErrCodeScreenshot indicates an invalid artifact source.
	ErrCodeScreenshot ErrorCode = "SCREENSHOT"
	// ErrCodeSchema indicates a table row or column violation.
	ErrCodeSchema ErrorCode = "SCHEMA"
)

// Sentinels for errors.Is matching by code.
var (
	ErrPath       = &Error{Code: ErrCodePath}
	ErrConfig     = &Error{Code: ErrCodeConfig}
	ErrScreenshot = &Error{Code: ErrCodeScreenshot}
	ErrSchema     = &Error{Code: ErrCodeSchema}
)

// Error carries a code for programmatic handling, a readable message,
// the underlying cause and optional context for debugging.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WrapError wraps an existing error with a code and message.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithContext attaches a key/value pair and returns the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
