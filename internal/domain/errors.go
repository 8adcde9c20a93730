package domain

import (
	"fmt"
	"runtime/debug"

	"github.com/pkg/errors"

	"virtest/internal/caller"
)

// ErrAlreadyRunning is returned when a file run is started while another is in progress.
var ErrAlreadyRunning = errors.New("runTestFiles cannot be running inside of itself")

// DefinitionError is a structurally invalid declaration. It aborts the run.
type DefinitionError struct {
	msg string
}

// NewDefinitionError formats a DefinitionError.
func NewDefinitionError(format string, args ...any) error {
	return errors.WithStack(&DefinitionError{msg: fmt.Sprintf(format, args...)})
}

func (e *DefinitionError) Error() string {
	return "definition error: " + e.msg
}

// IsDefinitionError reports whether err wraps a DefinitionError.
func IsDefinitionError(err error) bool {
	var def *DefinitionError
	return errors.As(err, &def)
}

// InternalError is a fault in the framework itself. When one is reported it
// cannot be determined whether the test failed.
type InternalError struct {
	msg   string
	cause error
}

func (e *InternalError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("internal error: %s: %v", e.msg, e.cause)
	}
	return "internal error: " + e.msg
}

func (e *InternalError) Unwrap() error { return e.cause }

// NewInternalError wraps cause (which may be nil). An InternalError cause is
// returned unchanged.
func NewInternalError(cause error, format string, args ...any) error {
	var internal *InternalError
	if cause != nil && errors.As(cause, &internal) {
		return cause
	}
	return errors.WithStack(&InternalError{msg: fmt.Sprintf(format, args...), cause: cause})
}

// IsInternalError reports whether err wraps an InternalError.
func IsInternalError(err error) bool {
	var internal *InternalError
	return errors.As(err, &internal)
}

// UnresolvablePromiseError names a test whose body never settled before the
// run was torn down.
type UnresolvablePromiseError struct {
	Description string
	Caller      caller.Caller
	Cause       error
}

// NewUnresolvablePromiseError builds the error for a pending test.
func NewUnresolvablePromiseError(description string, c caller.Caller, cause error) *UnresolvablePromiseError {
	return &UnresolvablePromiseError{Description: description, Caller: c, Cause: cause}
}

// Location is the description (when set) followed by the caller.
func (e *UnresolvablePromiseError) Location() string {
	if e.Description != "" {
		return e.Description + "\n" + e.Caller.String()
	}
	return e.Caller.String()
}

func (e *UnresolvablePromiseError) Error() string {
	return "The following test never settled:\n" + e.Location()
}

func (e *UnresolvablePromiseError) Unwrap() error { return e.Cause }

// EmptyTestGroupError marks a group whose declaration recorded no tests.
type EmptyTestGroupError struct{}

func (EmptyTestGroupError) Error() string { return "test group contained no tests" }

// FileNotFoundError marks an input that matched no file.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string { return "File not found: " + e.Path }

// FileNotUsedError marks a file that declared no test groups.
type FileNotUsedError struct {
	Path string
}

func (e *FileNotUsedError) Error() string { return "File contained no tests: " + e.Path }

// ImportError marks a file that could not be loaded.
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("failed to import %s: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// PanicError is a recovered panic from a test body.
type PanicError struct {
	Value any
	Stack []byte
}

// NewPanicError captures the current goroutine stack.
func NewPanicError(value any) *PanicError {
	return &PanicError{Value: value, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

// Unwrap exposes a panicked error value to errors.As.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// TestError reports that one or more tests failed. It carries an already
// formatted message.
type TestError struct {
	Message  string
	Failures int
}

func (e *TestError) Error() string { return e.Message }
