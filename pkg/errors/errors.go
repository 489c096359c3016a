// Package errors provides the coded error type used across openclimate.
// Per-actor problems (not found, incomplete data) are normally reported as
// diagnostics; the codes here classify the failures that reach the caller.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Code classifies an error for programmatic handling.
type Code string

const (
	// Per-actor lookups (1xx), non-fatal when they occur inside a batch.
	CodeNotFound       Code = "E101"
	CodeIncompleteData Code = "E102"

	// Caller input (2xx)
	CodeInvalidArgument Code = "E201"
	CodeInvalidConfig   Code = "E202"

	// Network and payload decoding (3xx)
	CodeTransport  Code = "E301"
	CodeBadPayload Code = "E302"
	CodeTimeout    Code = "E303"

	// Result shaping (4xx)
	CodeEmptyResult Code = "E401"

	// Export (5xx)
	CodeExportFailed Code = "E501"
	CodeStoreFailed  Code = "E502"

	CodeContextCanceled Code = "E901"
	CodeUnknown         Code = "E999"
)

// Sentinels for errors.Is checks. ClimateError.Is matches on code, so any
// error carrying the same code satisfies errors.Is(err, ErrX).
var (
	ErrNotFound        = &ClimateError{Code: CodeNotFound, Message: "actor not found"}
	ErrIncompleteData  = &ClimateError{Code: CodeIncompleteData, Message: "actor has no data for section"}
	ErrInvalidArgument = &ClimateError{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrInvalidConfig   = &ClimateError{Code: CodeInvalidConfig, Message: "invalid configuration"}
	ErrTransport       = &ClimateError{Code: CodeTransport, Message: "transport failure"}
	ErrBadPayload      = &ClimateError{Code: CodeBadPayload, Message: "malformed response body"}
	ErrEmptyResult     = &ClimateError{Code: CodeEmptyResult, Message: "no data available"}
	ErrExport          = &ClimateError{Code: CodeExportFailed, Message: "export failed"}
)

// ClimateError is the base error type for openclimate.
type ClimateError struct {
	Code       Code
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace []Frame
}

// Frame represents a stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *ClimateError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *ClimateError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ClimateError with the same code.
func (e *ClimateError) Is(target error) bool {
	if t, ok := target.(*ClimateError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *ClimateError) WithContext(key string, value interface{}) *ClimateError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new ClimateError.
func New(code Code, message string) *ClimateError {
	return &ClimateError{
		Code:       code,
		Message:    message,
		StackTrace: captureStack(2),
	}
}

// Newf creates a new ClimateError with a formatted message.
func Newf(code Code, format string, args ...interface{}) *ClimateError {
	return &ClimateError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		StackTrace: captureStack(2),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code Code, message string) *ClimateError {
	if err == nil {
		return nil
	}

	return &ClimateError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStack(2),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *ClimateError {
	if err == nil {
		return nil
	}
	return &ClimateError{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Cause:      err,
		StackTrace: captureStack(2),
	}
}

func captureStack(skip int) []Frame {
	var frames []Frame
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	pcs = pcs[:n]

	cf := runtime.CallersFrames(pcs)
	for {
		frame, more := cf.Next()
		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more || len(frames) >= 10 {
			break
		}
	}
	return frames
}

// FormatStack returns a formatted stack trace.
func (e *ClimateError) FormatStack() string {
	var sb strings.Builder
	for _, f := range e.StackTrace {
		sb.WriteString(fmt.Sprintf("  at %s\n    %s:%d\n", f.Function, f.File, f.Line))
	}
	return sb.String()
}

// --- Convenience constructors ---

// NotFound reports an actor id that did not resolve.
func NotFound(actorID string) *ClimateError {
	return New(CodeNotFound, "actor was not found").WithContext("actor_id", actorID)
}

// IncompleteData reports an actor lacking a section.
func IncompleteData(actorID, section string) *ClimateError {
	return New(CodeIncompleteData, "actor has no data for section").
		WithContext("actor_id", actorID).
		WithContext("section", section)
}

// InvalidArgument reports malformed caller input detected before any request.
func InvalidArgument(format string, args ...interface{}) *ClimateError {
	return &ClimateError{
		Code:       CodeInvalidArgument,
		Message:    fmt.Sprintf(format, args...),
		StackTrace: captureStack(2),
	}
}

// Transport wraps a network-level failure for a request URL.
func Transport(err error, url string) *ClimateError {
	return Wrap(err, CodeTransport, "request failed").WithContext("url", url)
}

// BadPayload wraps a body that could not be decoded.
func BadPayload(err error, url string, status int) *ClimateError {
	return Wrap(err, CodeBadPayload, "malformed response body").
		WithContext("url", url).
		WithContext("status", status)
}

// EmptyResult reports that no actor in a request carried the section.
func EmptyResult(section string) *ClimateError {
	return New(CodeEmptyResult, "no data available").WithContext("section", section)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var ce *ClimateError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var ce *ClimateError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CodeUnknown
}

// IsFatal reports whether the error aborts a call. NotFound and
// IncompleteData are recovered per actor and are not fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch GetCode(err) {
	case CodeNotFound, CodeIncompleteData:
		return false
	default:
		return true
	}
}

// MultiError collects multiple errors.
type MultiError struct {
	Errors []error
}

// Error implements the error interface.
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(m.Errors)))
	for i, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors returns true if any errors were collected.
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// Combined returns nil if no errors, the single error if one, or the MultiError.
func (m *MultiError) Combined() error {
	switch len(m.Errors) {
	case 0:
		return nil
	case 1:
		return m.Errors[0]
	default:
		return m
	}
}
