package ui

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"virtest/internal/domain"
)

func TestResolvedTracking(t *testing.T) {
	results := &domain.TestResultsOutput{Details: []domain.TestFailure{
		{TestName: "a"}, {TestName: "b", Resolved: true}, {TestName: "c"},
	}}
	resolved := map[int]bool{1: true, 2: true}

	assert.Equal(t, 1, unresolvedCount(len(results.Details), resolved))

	applyResolved(results, resolved)
	assert.False(t, results.Details[0].Resolved)
	assert.True(t, results.Details[1].Resolved)
	assert.True(t, results.Details[2].Resolved)
}

func TestListItemText(t *testing.T) {
	failure := domain.TestFailure{GroupName: "math", TestName: "adds [x]"}

	assert.Equal(t, "[yellow]1.[white] math › adds [x[]", listItemText(failure, 0, false))
	assert.Equal(t, "[gray]✓ [yellow]3.[gray] Test 3[white]", listItemText(domain.TestFailure{}, 2, true))
}

func TestErrorViewer_Format(t *testing.T) {
	ev := NewErrorViewer(nil, zerolog.Nop())
	failure := domain.TestFailure{
		GroupName:    "math",
		TestName:     "adds",
		FilePath:     "tests/math.vir.yaml",
		ResultState:  domain.StateExpectMatchFail,
		File:         "tests/math.vir.yaml",
		Line:         4,
		Message:      "expected: 2\n  but got: 3",
		ErrorDetails: `{"test": "Function"}`,
		StackTrace:   make([]string, 12),
	}

	details := ev.formatFailureDetails(failure)
	assert.Contains(t, details, "✗ Test: adds")
	assert.Contains(t, details, "Group: math")
	assert.Contains(t, details, "State: expect-match-fail")
	assert.Contains(t, details, "Location: tests/math.vir.yaml:4")
	assert.Contains(t, details, "expected: 2\n  but got: 3")
	assert.Contains(t, details, "Input:")
	assert.Contains(t, details, "... and 2 more lines")

	stats := ev.formatFailureStats(failure, 1)
	assert.Equal(t, "[cyan]path:[white] [yellow]tests/math.vir.yaml:4[white]::[yellow]math › adds[white]\n", stats)
}

func TestHeaderText(t *testing.T) {
	assert.Contains(t, headerText(4, 1), "Test Failures (4 total, 1 unresolved)")
}

func TestFailureBrowser_Toggle(t *testing.T) {
	st := &memoryStorage{}
	results := &domain.TestResultsOutput{Details: []domain.TestFailure{
		{TestName: "a"}, {TestName: "b", Resolved: true},
	}}
	b := newFailureBrowser(NewErrorViewer(st, zerolog.Nop()), results)

	b.toggle(0)
	assert.True(t, results.Details[0].Resolved)
	assert.True(t, results.Details[1].Resolved)
	assert.Equal(t, 1, st.saves)

	b.toggle(1)
	assert.False(t, results.Details[1].Resolved)
	assert.Equal(t, 2, st.saves)

	b.toggle(5)
	assert.Equal(t, 2, st.saves)
}

type memoryStorage struct {
	output *domain.TestResultsOutput
	saves  int
}

func (m *memoryStorage) Save(_ []domain.ResolvedTestGroupResults, failures []domain.TestFailure, _ time.Duration) (*domain.TestResultsOutput, error) {
	m.output = &domain.TestResultsOutput{Details: failures}
	return m.output, nil
}

func (m *memoryStorage) Load() (*domain.TestResultsOutput, error) { return m.output, nil }

func (m *memoryStorage) SaveOutput(output *domain.TestResultsOutput) error {
	m.output = output
	m.saves++
	return nil
}
