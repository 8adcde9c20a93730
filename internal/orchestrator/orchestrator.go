// Package orchestrator runs test files end to end: expand inputs, import
// each file, filter the declared groups, run them and append synthetic
// results for files that could not contribute tests.
package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"virtest/internal/caller"
	"virtest/internal/declaration"
	"virtest/internal/discovery"
	"virtest/internal/domain"
	"virtest/internal/execution"
	"virtest/internal/loader"
	"virtest/internal/selection"
)

// LostFileDescription names the group synthesized for a missing file.
const LostFileDescription = "File not found"

// Collection is what importing a set of inputs produced.
type Collection struct {
	Groups []domain.TestGroupOutput
	// Found lists every existing file; Lost every input that matched nothing.
	Found []string
	Lost  []string
	// EmptyFiles were imported but declared no groups.
	EmptyFiles     []string
	ImportFailures []*domain.ImportError
}

// Result is a finished run.
type Result struct {
	Collection
	Groups   []domain.ResolvedTestGroupResults
	Duration time.Duration
}

// Orchestrator drives a run. It must not be invoked from inside itself.
type Orchestrator struct {
	scanner    *discovery.Scanner
	filter     *discovery.Filter
	loader     loader.Loader
	declared   *declaration.Context
	runner     *execution.Runner
	logger     zerolog.Logger
	nameFilter string
	progress   func(total int) execution.Progress
	running    atomic.Bool
}

// New creates a new Orchestrator.
func New(
	scanner *discovery.Scanner,
	l loader.Loader,
	declared *declaration.Context,
	runner *execution.Runner,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		scanner:  scanner,
		filter:   discovery.NewFilter(),
		loader:   l,
		declared: declared,
		runner:   runner,
		logger:   logger,
	}
}

// SetNameFilter restricts found files to base names matching pattern.
func (o *Orchestrator) SetNameFilter(pattern string) {
	o.nameFilter = pattern
}

// SetProgress installs a factory for the progress reporter of each run. It
// receives the number of tests that will execute.
func (o *Orchestrator) SetProgress(factory func(total int) execution.Progress) {
	o.progress = factory
}

// RunFiles imports and runs every test file named by inputs. Definition
// errors abort the run; every other failure becomes a result.
func (o *Orchestrator) RunFiles(ctx context.Context, inputs []string) (*Result, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, domain.ErrAlreadyRunning
	}
	defer o.running.Store(false)

	collection, err := o.collect(ctx, inputs)
	if err != nil {
		return nil, err
	}

	groups := selection.Filter(collection.Groups)
	for _, lost := range collection.Lost {
		groups = append(groups, selection.Runnable(lostFileGroup(lost)))
	}

	if o.progress != nil {
		o.runner.SetProgress(o.progress(execution.CountRunnable(groups)))
	}
	resolved, duration, err := o.runner.Run(ctx, groups)
	result := &Result{Collection: *collection, Groups: resolved, Duration: duration}
	if err != nil {
		return result, err
	}

	for _, failure := range collection.ImportFailures {
		result.Groups = append(result.Groups, fileFailure(failure.Path, failure))
	}
	for _, empty := range collection.EmptyFiles {
		result.Groups = append(result.Groups, fileFailure(empty, &domain.FileNotUsedError{Path: empty}))
	}
	return result, nil
}

// Collect imports inputs without running anything.
func (o *Orchestrator) Collect(ctx context.Context, inputs []string) (*Collection, error) {
	if !o.running.CompareAndSwap(false, true) {
		return nil, domain.ErrAlreadyRunning
	}
	defer o.running.Store(false)

	return o.collect(ctx, inputs)
}

func (o *Orchestrator) collect(ctx context.Context, inputs []string) (*Collection, error) {
	found, lost, err := o.scanner.Expand(inputs)
	if err != nil {
		return nil, err
	}
	found = o.filter.FilterByName(found, o.nameFilter)
	o.logger.Debug().Int("found", len(found)).Int("lost", len(lost)).Msg("expanded inputs")

	collection := &Collection{Found: found, Lost: lost}
	o.declared.Clear()

	for _, path := range found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		groups, err := o.importFile(ctx, path)
		if err != nil {
			if domain.IsDefinitionError(err) {
				return nil, err
			}
			o.logger.Warn().Err(err).Str("file", path).Msg("import failed")
			collection.ImportFailures = append(collection.ImportFailures, &domain.ImportError{Path: path, Err: err})
			continue
		}
		if len(groups) == 0 {
			collection.EmptyFiles = append(collection.EmptyFiles, path)
			continue
		}
		collection.Groups = append(collection.Groups, groups...)
	}
	return collection, nil
}

// importFile loads one file and drains the groups it declared, stamped with
// their source file. On failure nothing the file declared is kept.
func (o *Orchestrator) importFile(ctx context.Context, path string) ([]domain.TestGroupOutput, error) {
	loadErr := o.loader.Load(ctx, path, o.declared)
	groups, drainErr := o.declared.Drain(ctx)
	if loadErr != nil {
		return nil, loadErr
	}
	if drainErr != nil {
		return nil, drainErr
	}
	for i := range groups {
		groups[i].FileSource = path
	}
	return groups, nil
}

func lostFileGroup(path string) domain.TestGroupOutput {
	fileCaller := caller.ForFile(path)
	return domain.TestGroupOutput{
		Description: LostFileDescription,
		Caller:      fileCaller,
		FileSource:  path,
		Tests: []domain.WrappedTest{{
			Input: domain.Func(func() error {
				return &domain.FileNotFoundError{Path: path}
			}),
			Caller: fileCaller,
		}},
	}
}

// fileFailure is a resolved group holding one failure for a whole file.
func fileFailure(path string, err error) domain.ResolvedTestGroupResults {
	fileCaller := caller.ForFile(path)
	return domain.ResolvedTestGroupResults{
		FilteredTestGroupOutput: domain.FilteredTestGroupOutput{
			Description: path,
			Caller:      fileCaller,
			FileSource:  path,
			Tests:       []domain.FilteredWrappedTest{},
		},
		AllResults: []domain.IndividualTestResult{
			domain.ErrorResult(nil, fileCaller, err),
		},
	}
}
