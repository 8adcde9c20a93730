package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtest/internal/caller"
	"virtest/internal/domain"
	"virtest/internal/selection"
)

type recordingProgress struct {
	updates  [][2]int
	finished int
}

func (p *recordingProgress) Update(passed, failed int) {
	p.updates = append(p.updates, [2]int{passed, failed})
}

func (p *recordingProgress) Finish() { p.finished++ }

func newRunner() *Runner {
	executor, _ := newExecutor()
	return NewRunner(executor, zerolog.Nop())
}

func wrap(inputs ...domain.Input) []domain.WrappedTest {
	tests := make([]domain.WrappedTest, len(inputs))
	for i, input := range inputs {
		tests[i] = domain.WrappedTest{Input: input, Caller: caller.Caller{FilePath: "runner_test.go", LineNumber: i + 1}}
	}
	return tests
}

func intTest(value, expect int, forceOnly bool) domain.Input {
	return domain.Test[int]{
		ForceOnly: forceOnly,
		Test:      func() (int, error) { return value, nil },
		Expect:    domain.Want(expect),
	}
}

func states(results []domain.IndividualTestResult) []domain.ResultState {
	out := make([]domain.ResultState, len(results))
	for i, result := range results {
		out[i] = result.ResultState
	}
	return out
}

func TestRunner_ForcedTestSuppressesSibling(t *testing.T) {
	groups := selection.Filter([]domain.TestGroupOutput{{
		Description: "forced",
		Tests:       wrap(intTest(1, 1, true), intTest(2, 2, false)),
	}})

	resolved, _, err := newRunner().Run(context.Background(), groups)
	require.NoError(t, err)
	require.Len(t, resolved, 1)

	results := resolved[0].AllResults
	require.Len(t, results, 2)
	assert.Equal(t, []domain.ResultState{domain.StateExpectMatchPass, domain.StateIgnored}, states(results))
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.Nil(t, results[1].Caller)
	assert.Nil(t, results[1].Output)
	assert.Nil(t, results[1].Error)
	assert.Equal(t, 0, domain.CountFailures(resolved))
}

func TestRunner_ForceAndExcludeStillRuns(t *testing.T) {
	ran := false
	groups := selection.Filter([]domain.TestGroupOutput{{
		Description: "tie-break",
		Tests: wrap(domain.Test[int]{
			ForceOnly: true,
			Exclude:   true,
			Test:      func() (int, error) { ran = true; return 0, nil },
		}),
	}})

	resolved, _, err := newRunner().Run(context.Background(), groups)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []domain.ResultState{domain.StateNoCheckPass}, states(resolved[0].AllResults))
}

func TestRunner_EmptyGroup(t *testing.T) {
	groupCaller := caller.Caller{FilePath: "empty.vir.yaml", LineNumber: 3}
	groups := selection.Filter([]domain.TestGroupOutput{{
		Description: "declares nothing",
		Caller:      groupCaller,
		Tests:       []domain.WrappedTest{},
	}})

	resolved, _, err := newRunner().Run(context.Background(), groups)
	require.NoError(t, err)
	require.Len(t, resolved, 1)

	assert.Equal(t, domain.EmptyGroupDescription, resolved[0].Description)
	require.Len(t, resolved[0].AllResults, 1)
	result := resolved[0].AllResults[0]
	assert.Equal(t, domain.StateError, result.ResultState)
	assert.False(t, result.Success)
	assert.Nil(t, result.Input)
	require.NotNil(t, result.Caller)
	assert.Equal(t, groupCaller, *result.Caller)

	var empty *domain.EmptyTestGroupError
	assert.ErrorAs(t, result.Error, &empty)
	assert.NoError(t, result.Validate())
	assert.Equal(t, 1, domain.CountFailures(resolved))
}

func TestRunner_IgnoredGroupHasNoResults(t *testing.T) {
	ran := false
	groups := selection.Filter([]domain.TestGroupOutput{
		{Description: "excluded", Exclude: true, Tests: wrap(domain.Func(func() error { ran = true; return nil }))},
		{Description: "runs", Tests: wrap(domain.Func(func() error { return nil }))},
	})

	resolved, _, err := newRunner().Run(context.Background(), groups)
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	assert.False(t, ran)
	assert.NotNil(t, resolved[0].AllResults)
	assert.Empty(t, resolved[0].AllResults)
	assert.Equal(t, domain.IgnoredExcluded, resolved[0].IgnoredReason)
	assert.Len(t, resolved[1].AllResults, 1)
}

func TestRunner_SequentialOrder(t *testing.T) {
	var order []string
	step := func(name string) domain.Input {
		return domain.Func(func() error { order = append(order, name); return nil })
	}
	groups := selection.Filter([]domain.TestGroupOutput{
		{Description: "first", Tests: wrap(step("a"), step("b"))},
		{Description: "second", Tests: wrap(step("c"))},
	})

	resolved, _, err := newRunner().Run(context.Background(), groups)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, "first", resolved[0].Description)
	assert.Equal(t, "second", resolved[1].Description)
}

func TestRunner_Deterministic(t *testing.T) {
	declared := []domain.TestGroupOutput{
		{Description: "one", Tests: wrap(intTest(1, 1, false), intTest(2, 3, false))},
		{Description: "two", Tests: wrap(intTest(1, 1, true), domain.Func(func() error { return errors.New("x") }))},
		{Description: "three", Tests: []domain.WrappedTest{}},
	}

	first, _, err := newRunner().Run(context.Background(), selection.Filter(declared))
	require.NoError(t, err)
	second, _, err := newRunner().Run(context.Background(), selection.Filter(declared))
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Description, second[i].Description)
		assert.Equal(t, first[i].IgnoredReason, second[i].IgnoredReason)
		assert.Equal(t, states(first[i].AllResults), states(second[i].AllResults))
	}
}

func TestRunner_Progress(t *testing.T) {
	progress := &recordingProgress{}
	runner := newRunner()
	runner.SetProgress(progress)

	groups := selection.Filter([]domain.TestGroupOutput{{
		Description: "counts",
		Tests:       wrap(intTest(1, 1, false), intTest(1, 2, false)),
	}})
	assert.Equal(t, 2, CountRunnable(groups))

	_, _, err := runner.Run(context.Background(), groups)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 0}, {1, 1}}, progress.updates)
	assert.Equal(t, 1, progress.finished)
}

func TestRunner_FailFast(t *testing.T) {
	runner := newRunner()
	runner.SetFailFast(true)
	ranAfter := false

	groups := selection.Filter([]domain.TestGroupOutput{
		{Description: "fails", Tests: wrap(
			domain.Func(func() error { return errors.New("first failure") }),
			domain.Func(func() error { ranAfter = true; return nil }),
		)},
		{Description: "never", Tests: wrap(domain.Func(func() error { ranAfter = true; return nil }))},
	})

	resolved, _, err := runner.Run(context.Background(), groups)
	require.NoError(t, err)
	assert.False(t, ranAfter)
	require.Len(t, resolved, 1)
	assert.Len(t, resolved[0].AllResults, 1)
	assert.Equal(t, 1, domain.CountFailures(resolved))
}

func TestRunner_DefinitionErrorAborts(t *testing.T) {
	groups := []domain.FilteredTestGroupOutput{
		selection.Runnable(domain.TestGroupOutput{Description: "bad", Tests: wrap(domain.Test[int]{
			Test:        func() (int, error) { return 0, nil },
			ExpectError: &domain.ErrorExpectation{},
		})}),
	}

	_, _, err := newRunner().Run(context.Background(), groups)
	require.Error(t, err)
	assert.True(t, domain.IsDefinitionError(err))
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	groups := selection.Filter([]domain.TestGroupOutput{{
		Description: "cancels",
		Tests: wrap(
			domain.Func(func() error { cancel(); return nil }),
			domain.Func(func() error { return nil }),
		),
	}})

	resolved, _, err := newRunner().Run(ctx, groups)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, resolved, 1)
	assert.Len(t, resolved[0].AllResults, 1)
}
