// Package matcher compares test outcomes against their expectations.
package matcher

import (
	"errors"
	"reflect"

	"virtest/internal/domain"
)

// ErrorsMatch reports whether thrown satisfies the expectation. A malformed
// expectation yields a DefinitionError, never a plain mismatch.
func ErrorsMatch(thrown error, expectation *domain.ErrorExpectation) (bool, error) {
	if err := expectation.Validate(); err != nil {
		return false, err
	}

	classMatch := true
	if expectation.ErrorClass != nil {
		classMatch = matchesClass(thrown, expectation.ErrorClass)
	}

	messageMatch := true
	if expectation.ErrorMessage != nil {
		messageMatch = matchesMessage(thrown, expectation.ErrorMessage)
	}

	return classMatch && messageMatch, nil
}

func matchesClass(thrown error, class reflect.Type) (matched bool) {
	if thrown == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	target := reflect.New(class)
	return errors.As(thrown, target.Interface())
}

func matchesMessage(thrown error, expected *domain.MessageExpectation) bool {
	message, ok := safeMessage(thrown)
	if !ok {
		return false
	}
	if expected.Pattern != nil {
		return expected.Pattern.FindStringIndex(message) != nil
	}
	return message == expected.Exact
}

// safeMessage returns thrown.Error(), treating a nil error or a panicking
// Error method as "no message".
func safeMessage(thrown error) (message string, ok bool) {
	if thrown == nil {
		return "", false
	}
	defer func() {
		if recover() != nil {
			message, ok = "", false
		}
	}()
	return thrown.Error(), true
}
