package errors

import "fmt"

// ErrorCode classifies a failure.
type ErrorCode string

const (
	// ErrCodeConfig marks a schema-invalid configuration: missing key, wrong
	// type, unknown scheme, unknown pattern name.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"
	// ErrCodeParse marks a version number that does not match its scheme.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodePattern marks a search pattern or replacement template that
	// failed to render or compile.
	ErrCodePattern ErrorCode = "PATTERN_ERROR"
	// ErrCodeVCSUnavailable marks a failed git query.
	ErrCodeVCSUnavailable ErrorCode = "VCS_UNAVAILABLE"
	// ErrCodeAccess marks a target file that is missing or not readable/writable.
	ErrCodeAccess ErrorCode = "ACCESS_ERROR"
)

// StructuredError is an error with a code, a human readable message, an
// optional cause and optional key/value context for logging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// LogAttrs flattens the error into slog key/value pairs.
func (e *StructuredError) LogAttrs() []any {
	attrs := []any{"code", string(e.Code)}
	for k, v := range e.Context {
		attrs = append(attrs, k, v)
	}
	return attrs
}

// New creates a StructuredError without a cause.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(code ErrorCode, format string, args ...any) *StructuredError {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithContext creates a StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// IsCode reports whether any error in err's chain is a StructuredError with
// the given code. Joined errors are searched as well.
func IsCode(err error, code ErrorCode) bool {
	switch e := err.(type) {
	case nil:
		return false
	case *StructuredError:
		if e.Code == code {
			return true
		}
		return IsCode(e.Cause, code)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if IsCode(inner, code) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return IsCode(e.Unwrap(), code)
	}
	return false
}
