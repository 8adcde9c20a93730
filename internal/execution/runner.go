package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"virtest/internal/domain"
)

// Progress receives running pass/fail counts. Implemented by ui.ProgressBar.
type Progress interface {
	Update(passed, failed int)
	Finish()
}

// Runner runs filtered groups strictly in order, one test at a time.
type Runner struct {
	executor *Executor
	progress Progress
	failFast bool
	logger   zerolog.Logger
}

// NewRunner creates a new Runner
func NewRunner(executor *Executor, logger zerolog.Logger) *Runner {
	return &Runner{executor: executor, logger: logger}
}

// SetProgress sets the progress reporter for the runner
func (r *Runner) SetProgress(progress Progress) {
	r.progress = progress
}

// SetFailFast stops the run after the first failing result. Groups after the
// failure are left out of the results.
func (r *Runner) SetFailFast(failFast bool) {
	r.failFast = failFast
}

// CountRunnable is the number of tests that will execute, for sizing progress.
func CountRunnable(groups []domain.FilteredTestGroupOutput) int {
	count := 0
	for _, group := range groups {
		if group.IgnoredReason.Ignored() {
			continue
		}
		if len(group.Tests) == 0 {
			count++
			continue
		}
		for _, test := range group.Tests {
			if !test.IgnoredReason.Ignored() {
				count++
			}
		}
	}
	return count
}

// Run executes groups in order. Ignored groups get no results, ignored tests
// get an Ignored placeholder and a group without tests gets one empty-group
// failure. A definition error aborts the run; so does ctx, in which case the
// groups resolved so far are returned with the context error.
func (r *Runner) Run(ctx context.Context, groups []domain.FilteredTestGroupOutput) ([]domain.ResolvedTestGroupResults, time.Duration, error) {
	startTime := time.Now()
	resolved := make([]domain.ResolvedTestGroupResults, 0, len(groups))
	var passed, failed int

	record := func(result domain.IndividualTestResult) {
		if result.ResultState == domain.StateIgnored {
			return
		}
		if result.Success {
			passed++
		} else {
			failed++
		}
		if r.progress != nil {
			r.progress.Update(passed, failed)
		}
	}
	finish := func() {
		if r.progress != nil {
			r.progress.Finish()
		}
	}

	for _, group := range groups {
		if group.IgnoredReason.Ignored() {
			r.logger.Debug().Str("group", group.Description).Str("reason", string(group.IgnoredReason)).Msg("skipping group")
			resolved = append(resolved, domain.ResolvedTestGroupResults{
				FilteredTestGroupOutput: group,
				AllResults:              []domain.IndividualTestResult{},
			})
			continue
		}

		if len(group.Tests) == 0 {
			r.logger.Debug().Str("group", group.Description).Str("caller", group.Caller.String()).Msg("group contained no tests")
			result := domain.ErrorResult(nil, group.Caller, &domain.EmptyTestGroupError{})
			record(result)
			empty := group
			empty.Description = domain.EmptyGroupDescription
			resolved = append(resolved, domain.ResolvedTestGroupResults{
				FilteredTestGroupOutput: empty,
				AllResults:              []domain.IndividualTestResult{result},
			})
			if r.failFast {
				break
			}
			continue
		}

		results := make([]domain.IndividualTestResult, 0, len(group.Tests))
		stop := false
		for _, test := range group.Tests {
			if err := ctx.Err(); err != nil {
				resolved = append(resolved, domain.ResolvedTestGroupResults{FilteredTestGroupOutput: group, AllResults: results})
				finish()
				return resolved, time.Since(startTime), fmt.Errorf("run interrupted: %w", err)
			}

			if test.IgnoredReason.Ignored() {
				results = append(results, domain.IgnoredResult(test.Input))
				continue
			}

			result, err := r.executor.Run(ctx, test.Input, test.Caller)
			if err != nil {
				finish()
				return resolved, time.Since(startTime), err
			}
			results = append(results, result)
			record(result)
			if r.failFast && !result.Success {
				stop = true
				break
			}
		}

		resolved = append(resolved, domain.ResolvedTestGroupResults{
			FilteredTestGroupOutput: group,
			AllResults:              results,
		})
		if stop {
			r.logger.Debug().Str("group", group.Description).Msg("fail-fast: stopping after first failure")
			break
		}
	}

	finish()
	return resolved, time.Since(startTime), nil
}
