package domain

import (
	"fmt"

	"virtest/internal/caller"
)

// IndividualTestResult is the outcome of one declared test. It behaves as a
// tagged union keyed by ResultState; use the constructors below and Validate
// to keep the per-state field constraints.
type IndividualTestResult struct {
	ResultState ResultState
	Success     bool
	// Caller is nil only for ignored tests.
	Caller *caller.Caller
	// Input is nil only for synthetic framework failures.
	Input Input
	// Output is nil for every error-bearing state.
	Output any
	Error  error
}

// NoCheckPassResult is a test without expectations that threw nothing.
func NoCheckPassResult(input Input, c caller.Caller) IndividualTestResult {
	return IndividualTestResult{
		ResultState: StateNoCheckPass,
		Success:     true,
		Caller:      &c,
		Input:       input,
	}
}

// ExpectMatchResult compares against a value expectation.
func ExpectMatchResult(input Input, c caller.Caller, output any, matched bool) IndividualTestResult {
	state := StateExpectMatchFail
	if matched {
		state = StateExpectMatchPass
	}
	return IndividualTestResult{
		ResultState: state,
		Success:     matched,
		Caller:      &c,
		Input:       input,
		Output:      output,
	}
}

// ErrorMatchResult checks a thrown error (possibly nil) against an error expectation.
func ErrorMatchResult(input Input, c caller.Caller, thrown error, matched bool) IndividualTestResult {
	state := StateErrorMatchFail
	if matched {
		state = StateErrorMatchPass
	}
	return IndividualTestResult{
		ResultState: state,
		Success:     matched,
		Caller:      &c,
		Input:       input,
		Error:       thrown,
	}
}

// ErrorResult is an unexpected throw, an internal fault, or a synthetic
// failure (input may then be nil).
func ErrorResult(input Input, c caller.Caller, err error) IndividualTestResult {
	return IndividualTestResult{
		ResultState: StateError,
		Success:     false,
		Caller:      &c,
		Input:       input,
		Error:       err,
	}
}

// IgnoredResult is the placeholder for a selected-out test.
func IgnoredResult(input Input) IndividualTestResult {
	return IndividualTestResult{
		ResultState: StateIgnored,
		Success:     true,
		Input:       input,
	}
}

// Description is the test's description, or empty.
func (r IndividualTestResult) Description() string {
	if r.Input == nil {
		return ""
	}
	return r.Input.Properties().Description
}

// Validate checks the per-state invariants.
func (r IndividualTestResult) Validate() error {
	if !r.ResultState.IsValid() {
		return fmt.Errorf("unknown result state %q", r.ResultState)
	}
	if r.Success != r.ResultState.IsPass() {
		return fmt.Errorf("state %s with success=%t", r.ResultState, r.Success)
	}
	switch r.ResultState {
	case StateIgnored:
		if r.Caller != nil || r.Output != nil || r.Error != nil {
			return fmt.Errorf("ignored result must not carry caller, output or error")
		}
		if r.Input == nil {
			return fmt.Errorf("ignored result must carry its input")
		}
	case StateError, StateErrorMatchPass, StateErrorMatchFail:
		if r.Output != nil {
			return fmt.Errorf("state %s must not carry output", r.ResultState)
		}
	case StateNoCheckPass:
		if r.Output != nil || r.Error != nil {
			return fmt.Errorf("no-check pass must not carry output or error")
		}
	case StateExpectMatchPass, StateExpectMatchFail:
		if r.Error != nil {
			return fmt.Errorf("state %s must not carry an error", r.ResultState)
		}
	}
	if r.ResultState != StateIgnored && r.Caller == nil {
		return fmt.Errorf("state %s requires a caller", r.ResultState)
	}
	if r.ResultState != StateError && r.Input == nil {
		return fmt.Errorf("state %s requires an input", r.ResultState)
	}
	return nil
}

// CountFailures counts results with Success=false across all groups.
func CountFailures(groups []ResolvedTestGroupResults) int {
	count := 0
	for _, group := range groups {
		for _, result := range group.AllResults {
			if !result.Success {
				count++
			}
		}
	}
	return count
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	RunID           string  `json:"run_id"`
	TotalGroups     int     `json:"total_groups"`
	TotalTests      int     `json:"total_tests"`
	PassedTests     int     `json:"passed_tests"`
	FailedTests     int     `json:"failed_tests"`
	IgnoredTests    int     `json:"ignored_tests"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Details []TestFailure   `json:"details"`
}
