package domain

// ResultState is the outcome classification of a single test.
type ResultState string

const (
	// StateNoCheckPass: no expectations were given and nothing was thrown
	StateNoCheckPass ResultState = "no-check-pass"
	// StateExpectMatchPass: the returned value matched the expectation
	StateExpectMatchPass ResultState = "expect-match-pass"
	// StateExpectMatchFail: the returned value did not match the expectation
	StateExpectMatchFail ResultState = "expect-match-fail"
	// StateErrorMatchPass: the thrown error matched the error expectation
	StateErrorMatchPass ResultState = "error-match-pass"
	// StateErrorMatchFail: the thrown error (or lack of one) did not match the error expectation
	StateErrorMatchFail ResultState = "error-match-fail"
	// StateError: the test threw without an error expectation
	StateError ResultState = "error"
	// StateIgnored: the test was selected out and never executed
	StateIgnored ResultState = "ignored"
)

// PassStates are the states counted as success.
var PassStates = []ResultState{
	StateExpectMatchPass,
	StateNoCheckPass,
	StateErrorMatchPass,
	StateIgnored,
}

// FailStates are the states counted as failure.
var FailStates = []ResultState{
	StateExpectMatchFail,
	StateErrorMatchFail,
	StateError,
}

// AllResultStates lists every state in declaration order.
func AllResultStates() []ResultState {
	return []ResultState{
		StateNoCheckPass,
		StateExpectMatchPass,
		StateExpectMatchFail,
		StateErrorMatchPass,
		StateErrorMatchFail,
		StateError,
		StateIgnored,
	}
}

var resultStateExplanations = map[ResultState]string{
	StateNoCheckPass:     "No errors were thrown and the test had no expectation.",
	StateExpectMatchPass: "The test output met expectations.",
	StateExpectMatchFail: "The test output did not meet expectations.",
	StateErrorMatchPass:  "The test threw an error that met error expectations.",
	StateErrorMatchFail:  "The test threw an error that did not meet error expectations.",
	StateError:           "The test encountered an error.",
	StateIgnored:         "The test was ignored.",
}

// IsValid reports whether s is one of the known states.
func (s ResultState) IsValid() bool {
	_, ok := resultStateExplanations[s]
	return ok
}

// IsPass reports whether s is a pass state. Unknown states are not passes.
func (s ResultState) IsPass() bool {
	for _, pass := range PassStates {
		if s == pass {
			return true
		}
	}
	return false
}

// Explanation is a one-line human description of the state.
func (s ResultState) Explanation() string {
	if explanation, ok := resultStateExplanations[s]; ok {
		return explanation
	}
	return "Unknown result state."
}

// IgnoredReason explains why a test or group was selected out. The zero value
// means it will run.
type IgnoredReason string

const (
	IgnoredNone      IgnoredReason = ""
	IgnoredExcluded  IgnoredReason = "Excluded"
	IgnoredNonForced IgnoredReason = "NonForced"
)

// Ignored reports whether the reason suppresses execution.
func (r IgnoredReason) Ignored() bool {
	return r != IgnoredNone
}
