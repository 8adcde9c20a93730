package domain

import "virtest/internal/caller"

// EmptyGroupDescription replaces the description of a group that declared no tests.
const EmptyGroupDescription = "Test group contained no tests"

// WrappedTest is a declared, not yet executed test.
type WrappedTest struct {
	Input  Input
	Caller caller.Caller
}

// TestGroupOutput is a declared group. Tests is fixed once declaration settles.
type TestGroupOutput struct {
	Description string
	Exclude     bool
	ForceOnly   bool
	Caller      caller.Caller
	// FileSource is the file that declared the group, when known.
	FileSource string
	Tests      []WrappedTest
}

// FilteredWrappedTest is a test annotated by selection.
type FilteredWrappedTest struct {
	WrappedTest
	IgnoredReason IgnoredReason
}

// FilteredTestGroupOutput is a group annotated by selection.
type FilteredTestGroupOutput struct {
	Description   string
	Exclude       bool
	ForceOnly     bool
	Caller        caller.Caller
	FileSource    string
	Tests         []FilteredWrappedTest
	IgnoredReason IgnoredReason
}

// ResolvedTestGroupResults is the terminal record handed to reporting.
type ResolvedTestGroupResults struct {
	FilteredTestGroupOutput
	AllResults []IndividualTestResult
}

// Success reports whether every result in the group passed.
func (r ResolvedTestGroupResults) Success() bool {
	for _, result := range r.AllResults {
		if !result.Success {
			return false
		}
	}
	return true
}
