package declaration

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"virtest/internal/caller"
	"virtest/internal/domain"
)

// RunTest records a test. Nothing is executed until the group runs.
type RunTest func(input domain.Input)

// GroupInput is the object form of a synchronously declared group.
type GroupInput struct {
	Description string
	Exclude     bool
	ForceOnly   bool
	Tests       func(runTest RunTest)
}

// AsyncGroupInput declares a group whose test list depends on setup that may
// block. A returned error fails the declaration.
type AsyncGroupInput struct {
	Description string
	Exclude     bool
	ForceOnly   bool
	Tests       func(ctx context.Context, runTest RunTest) error
}

// Declare records a group and returns it once its callback returned. A blank
// description, an invalid test or a panicking callback is returned as an error.
func (c *Context) Declare(in GroupInput) (domain.TestGroupOutput, error) {
	return c.declareSync(in, caller.Capture(1), true)
}

// DeclareSkip is Declare for wrappers: the group caller is taken extra frames
// further up the stack.
func (c *Context) DeclareSkip(in GroupInput, extra int) (domain.TestGroupOutput, error) {
	return c.declareSync(in, caller.Capture(1+extra), true)
}

// DeclareAt records a group whose declaration site is known to the caller,
// such as a position in a data file.
func (c *Context) DeclareAt(in GroupInput, at caller.Caller) (domain.TestGroupOutput, error) {
	return c.declareSync(in, at, true)
}

// Located is implemented by inputs that carry their own declaration site.
// RunTest uses it instead of the call stack.
type Located interface {
	DeclaredAt() caller.Caller
}

// DeclareFunc records a group from a bare callback. The description may be empty.
func (c *Context) DeclareFunc(tests func(runTest RunTest)) (domain.TestGroupOutput, error) {
	return c.declareSync(GroupInput{Tests: tests}, caller.Capture(1), false)
}

// DeclareFuncSkip is DeclareFunc for wrappers.
func (c *Context) DeclareFuncSkip(tests func(runTest RunTest), extra int) (domain.TestGroupOutput, error) {
	return c.declareSync(GroupInput{Tests: tests}, caller.Capture(1+extra), false)
}

// DeclareAsync records a group whose callback runs on its own goroutine once
// every earlier declaration settled. Definition errors in the input itself
// are returned immediately.
func (c *Context) DeclareAsync(ctx context.Context, in AsyncGroupInput) (*Pending, error) {
	return c.declareAsync(ctx, in, caller.Capture(1))
}

// DeclareAsyncSkip is DeclareAsync for wrappers.
func (c *Context) DeclareAsyncSkip(ctx context.Context, in AsyncGroupInput, extra int) (*Pending, error) {
	return c.declareAsync(ctx, in, caller.Capture(1+extra))
}

func (c *Context) declareAsync(ctx context.Context, in AsyncGroupInput, groupCaller caller.Caller) (*Pending, error) {
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if in.Tests == nil {
		return nil, domain.NewDefinitionError("test group %q has no tests callback", in.Description)
	}

	p, previous, _ := c.enqueue()
	go func() {
		if previous != nil {
			select {
			case <-previous:
			case <-ctx.Done():
				p.settle(domain.TestGroupOutput{}, fmt.Errorf("declaring group %q: %w", in.Description, ctx.Err()))
				return
			}
		}

		col := c.newCollector(in.Description, in.Exclude, in.ForceOnly, groupCaller)
		done := c.collecting(&activeDeclaration{description: in.Description, ctx: ctx})
		err := col.collect(func(runTest RunTest) error {
			return in.Tests(ctx, runTest)
		})
		done()
		group, err := col.finish(err)
		c.logDeclared(group, err)
		p.settle(group, err)
	}()
	return p, nil
}

func (c *Context) declareSync(in GroupInput, groupCaller caller.Caller, requireDescription bool) (domain.TestGroupOutput, error) {
	if requireDescription {
		if err := validateDescription(in.Description); err != nil {
			return domain.TestGroupOutput{}, err
		}
	}
	if in.Tests == nil {
		return domain.TestGroupOutput{}, domain.NewDefinitionError("test group %q has no tests callback", in.Description)
	}

	p, previous, active, err := c.enqueueSync(in.Description)
	if err != nil {
		return domain.TestGroupOutput{}, err
	}
	if err := c.waitPrevious(in.Description, previous, active); err != nil {
		p.settle(domain.TestGroupOutput{}, err)
		return domain.TestGroupOutput{}, err
	}

	col := c.newCollector(in.Description, in.Exclude, in.ForceOnly, groupCaller)
	done := c.collecting(&activeDeclaration{description: in.Description})
	err = col.collect(func(runTest RunTest) error {
		in.Tests(runTest)
		return nil
	})
	done()
	group, err := col.finish(err)
	c.logDeclared(group, err)
	p.settle(group, err)
	return group, err
}

// waitPrevious blocks until the previous declaration settled. While an async
// callback is collecting, the wait also ends with its context: a Declare
// issued from inside that callback cannot complete before it returns.
func (c *Context) waitPrevious(description string, previous <-chan struct{}, active *activeDeclaration) error {
	if previous == nil {
		return nil
	}
	if active == nil || active.ctx == nil {
		<-previous
		return nil
	}

	select {
	case <-previous:
		return nil
	default:
	}
	c.logger.Warn().
		Str("group", description).
		Str("waiting_for", active.description).
		Msg("waiting for an async group to finish declaring; use DeclareAsync to declare groups from its callback")
	select {
	case <-previous:
		return nil
	case <-active.ctx.Done():
		return fmt.Errorf("declaring group %q while %q was collecting tests: %w", description, active.description, active.ctx.Err())
	}
}

func (c *Context) logDeclared(group domain.TestGroupOutput, err error) {
	if err != nil {
		c.logger.Debug().Err(err).Str("group", group.Description).Msg("group declaration failed")
		return
	}
	c.logger.Debug().
		Str("group", group.Description).
		Str("caller", group.Caller.String()).
		Int("tests", len(group.Tests)).
		Msg("group declared")
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return domain.NewDefinitionError("invalid test group description: %q", description)
	}
	return nil
}

// collector accumulates the tests of one group. runTest may be called from
// other goroutines while an async callback is running.
type collector struct {
	mu     sync.Mutex
	group  domain.TestGroupOutput
	err    error
	sealed bool
	logger zerolog.Logger
}

func (c *Context) newCollector(description string, exclude, forceOnly bool, groupCaller caller.Caller) *collector {
	return &collector{
		logger: c.logger,
		group: domain.TestGroupOutput{
			Description: description,
			Exclude:     exclude,
			ForceOnly:   forceOnly,
			Caller:      groupCaller,
			Tests:       []domain.WrappedTest{},
		},
	}
}

func (col *collector) add(input domain.Input, testCaller caller.Caller) {
	if located, ok := input.(Located); ok {
		testCaller = located.DeclaredAt()
	}

	col.mu.Lock()
	defer col.mu.Unlock()

	if col.sealed {
		col.logger.Warn().
			Str("group", col.group.Description).
			Str("caller", testCaller.String()).
			Msg("test recorded after its group finished declaring; it will not run")
		return
	}
	if err := domain.ValidateInput(input); err != nil {
		if col.err == nil {
			col.err = fmt.Errorf("%s: %w", testCaller, err)
		}
		return
	}
	col.group.Tests = append(col.group.Tests, domain.WrappedTest{Input: input, Caller: testCaller})
}

// collect runs the declaration callback, converting a panic into an InternalError.
func (col *collector) collect(declare func(runTest RunTest) error) (err error) {
	runTest := func(input domain.Input) {
		col.add(input, caller.Capture(1))
	}
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewInternalError(domain.NewPanicError(r), "test group %q panicked while declaring", col.group.Description)
		}
	}()
	if err := declare(runTest); err != nil {
		return fmt.Errorf("declaring group %q: %w", col.group.Description, err)
	}
	return nil
}

// finish seals the group. Later runTest calls are logged and dropped.
func (col *collector) finish(callbackErr error) (domain.TestGroupOutput, error) {
	col.mu.Lock()
	defer col.mu.Unlock()

	col.sealed = true
	if col.err != nil {
		return col.group, col.err
	}
	return col.group, callbackErr
}
