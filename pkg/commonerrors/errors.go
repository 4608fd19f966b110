// Package commonerrors provides structured error handling for the common
// library: a categorized error type carrying a message, an optional cause,
// key-value details and the call stack captured where the error was raised.
//
// # Basic Usage
//
//	err := commonerrors.New(commonerrors.ErrorTypeValidation, "value too large").
//	    WithDetail("column", "name").
//	    WithDetail("size", 10)
//
// Packages define their own sentinel errors and raise them through Wrap, so
// callers can match either the sentinel with errors.Is or the category with
// IsType:
//
//	var ErrNoSuchField = errors.New("no such field")
//
//	return commonerrors.Wrap(ErrNoSuchField, commonerrors.ErrorTypeNotFound, "field \"age\"")
//
// # Thread Safety
//
// Error instances are not safe for concurrent modification. Finish adding
// details before sharing an error across goroutines.
package commonerrors

import (
	"errors"
	"runtime"

	stringpool "github.com/codeprimate-software-archive/cp-common-sub005/pkg/strings"
)

// ErrorType represents the category of an error.
type ErrorType string

const (
	// ErrorTypeInternal represents internal failures
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents constraint and validation failures
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents lookups of absent fields, columns or providers
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeOutOfRange represents invalid positional access
	ErrorTypeOutOfRange ErrorType = "out_of_range"
	// ErrorTypeState represents operations invalid for the current state
	ErrorTypeState ErrorType = "state"
	// ErrorTypeImmutable represents mutation of a read-only value
	ErrorTypeImmutable ErrorType = "immutable"
	// ErrorTypeConcurrentModification represents a structural change observed by an iterator
	ErrorTypeConcurrentModification ErrorType = "concurrent_modification"
	// ErrorTypeUnsupported represents operations a value does not support
	ErrorTypeUnsupported ErrorType = "unsupported"
	// ErrorTypeArgument represents invalid arguments
	ErrorTypeArgument ErrorType = "argument"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeData represents data encoding and decoding errors
	ErrorTypeData ErrorType = "data"
	// ErrorTypeQuery represents database query errors
	ErrorTypeQuery ErrorType = "query"
)

// Error represents a structured error with context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack.
type StackFrame struct {
	Function string // Fully qualified function name
	File     string // Source file path
	Line     int    // Line number in source file
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return stringpool.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return stringpool.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error. It can be chained.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns a detail value previously attached with WithDetail.
func (e *Error) Detail(key string) (interface{}, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// New creates a new error with the given type and message, capturing the
// call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf is New with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: stringpool.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context. If err is already a
// structured Error its stack is preserved. Returns nil if err is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, errType, stringpool.Sprintf(format, args...))
}

// IsType reports whether any structured error in err's chain has the given type.
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Cause
	}
	return false
}

// TypeOf returns the type of the outermost structured error in err's chain,
// or ErrorTypeInternal when err carries none.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}

// captureStack captures the call stack up to maxFrames deep, skipping the
// given number of frames from the top.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
