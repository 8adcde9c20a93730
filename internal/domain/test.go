package domain

import (
	"fmt"
	"reflect"
	"regexp"
)

// Properties are the selection flags shared by tests and test groups.
type Properties struct {
	Description string
	Exclude     bool
	ForceOnly   bool
}

// Input is a declared test body plus its expectations. Implemented by Func
// and Test.
type Input interface {
	Properties() Properties
	// Run invokes the body. Panics are not recovered here.
	Run() (any, error)
	// Expected returns the value expectation, if one was declared.
	Expected() (any, bool)
	// ErrorExpected returns the error expectation, or nil.
	ErrorExpected() *ErrorExpectation
}

// Func is the bare callback form: no expectations, failure means a non-nil error.
type Func func() error

func (f Func) Properties() Properties { return Properties{} }

func (f Func) Run() (any, error) {
	if f == nil {
		return nil, NewDefinitionError("test function is nil")
	}
	return nil, f()
}

func (f Func) validateBody() error {
	if f == nil {
		return NewDefinitionError("test function is nil")
	}
	return nil
}

func (f Func) Expected() (any, bool) { return nil, false }

func (f Func) ErrorExpected() *ErrorExpectation { return nil }

// Test is the object form of a test. At most one of Expect and ExpectError may
// be set; with neither, any returned value passes as long as nothing is thrown.
type Test[R any] struct {
	Description string
	Exclude     bool
	ForceOnly   bool
	Test        func() (R, error)
	Expect      *R
	ExpectError *ErrorExpectation
}

func (t Test[R]) Properties() Properties {
	return Properties{
		Description: t.Description,
		Exclude:     t.Exclude,
		ForceOnly:   t.ForceOnly,
	}
}

func (t Test[R]) Run() (any, error) {
	if t.Test == nil {
		return nil, NewDefinitionError("test %q has no test function", t.Description)
	}
	out, err := t.Test()
	return out, err
}

func (t Test[R]) validateBody() error {
	if t.Test == nil {
		return NewDefinitionError("test %q has no test function", t.Description)
	}
	return nil
}

func (t Test[R]) Expected() (any, bool) {
	if t.Expect == nil {
		return nil, false
	}
	return *t.Expect, true
}

func (t Test[R]) ErrorExpected() *ErrorExpectation {
	return t.ExpectError
}

// Want returns a pointer to v, for Test.Expect.
func Want[R any](v R) *R {
	return &v
}

// ErrorExpectation describes the error a test must throw. At least one field
// must be set; when both are, both must match.
type ErrorExpectation struct {
	// ErrorClass is matched with errors.As semantics along the wrap chain.
	ErrorClass   reflect.Type
	ErrorMessage *MessageExpectation
}

// MessageExpectation is an exact message, or a pattern searched for in the message.
type MessageExpectation struct {
	Exact   string
	Pattern *regexp.Regexp
}

// Message expects the error message to equal text.
func Message(text string) *MessageExpectation {
	return &MessageExpectation{Exact: text}
}

// MessagePattern expects the error message to contain a match of re.
func MessagePattern(re *regexp.Regexp) *MessageExpectation {
	return &MessageExpectation{Pattern: re}
}

// MessageMatching compiles expr and expects a match within the error message.
func MessageMatching(expr string) *MessageExpectation {
	return MessagePattern(regexp.MustCompile(expr))
}

func (m *MessageExpectation) String() string {
	if m == nil {
		return "<nil>"
	}
	if m.Pattern != nil {
		return "/" + m.Pattern.String() + "/"
	}
	return fmt.Sprintf("%q", m.Exact)
}

var errorInterface = reflect.TypeFor[error]()

// ErrorClassOf returns the error class for T, e.g. ErrorClassOf[*fs.PathError]().
func ErrorClassOf[T error]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Validate returns a DefinitionError for malformed expectations.
func (e *ErrorExpectation) Validate() error {
	if e == nil {
		return NewDefinitionError("error expectation is nil")
	}
	if e.ErrorClass == nil && e.ErrorMessage == nil {
		return NewDefinitionError("empty error expectation: set ErrorClass and/or ErrorMessage")
	}
	if e.ErrorClass != nil && e.ErrorClass.Kind() != reflect.Interface && !e.ErrorClass.Implements(errorInterface) {
		return NewDefinitionError("error class %s does not implement error", e.ErrorClass)
	}
	return nil
}

// ClassName is the printable name of the expected error class.
func (e *ErrorExpectation) ClassName() string {
	if e == nil || e.ErrorClass == nil {
		return ""
	}
	return e.ErrorClass.String()
}

func (e *ErrorExpectation) String() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.ErrorClass != nil && e.ErrorMessage != nil:
		return fmt.Sprintf("{errorClass: %s, errorMessage: %s}", e.ClassName(), e.ErrorMessage)
	case e.ErrorClass != nil:
		return fmt.Sprintf("{errorClass: %s}", e.ClassName())
	default:
		return fmt.Sprintf("{errorMessage: %s}", e.ErrorMessage)
	}
}

// ValidateInput checks an input for definition errors before it is recorded.
func ValidateInput(input Input) error {
	if input == nil {
		return NewDefinitionError("test input is nil")
	}
	if body, ok := input.(interface{ validateBody() error }); ok {
		if err := body.validateBody(); err != nil {
			return err
		}
	}
	expectError := input.ErrorExpected()
	if expectError == nil {
		return nil
	}
	if err := expectError.Validate(); err != nil {
		return err
	}
	if _, ok := input.Expected(); ok {
		return NewDefinitionError("test %q declares both Expect and ExpectError", input.Properties().Description)
	}
	return nil
}
