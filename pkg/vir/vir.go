// Package vir declares test groups from Go code and runs them with the same
// selection and classification rules as the virtest CLI.
//
//	ctx := vir.NewContext()
//	ctx.Group(vir.GroupInput{
//		Description: "math",
//		Tests: func(runTest vir.RunTest) {
//			runTest(vir.Test[int]{Description: "adds", Test: add, Expect: vir.Want(3)})
//		},
//	})
//	results, err := ctx.Run(context.Background())
package vir

import (
	"context"
	"reflect"
	"regexp"

	"github.com/rs/zerolog"

	"virtest/internal/caller"
	"virtest/internal/declaration"
	"virtest/internal/domain"
	"virtest/internal/execution"
	"virtest/internal/exitguard"
	"virtest/internal/selection"
)

type (
	Input                    = domain.Input
	Func                     = domain.Func
	Test[R any]              = domain.Test[R]
	ErrorExpectation         = domain.ErrorExpectation
	MessageExpectation       = domain.MessageExpectation
	Caller                   = caller.Caller
	RunTest                  = declaration.RunTest
	GroupInput               = declaration.GroupInput
	AsyncGroupInput          = declaration.AsyncGroupInput
	Pending                  = declaration.Pending
	TestGroupOutput          = domain.TestGroupOutput
	ResolvedTestGroupResults = domain.ResolvedTestGroupResults
	IndividualTestResult     = domain.IndividualTestResult
	ResultState              = domain.ResultState
)

// Want marks v as the expected output of a Test.
func Want[R any](v R) *R { return domain.Want(v) }

// ErrorClass is the class of T for ErrorExpectation.ErrorClass.
func ErrorClass[T error]() reflect.Type { return domain.ErrorClassOf[T]() }

// Message expects an exact error message.
func Message(text string) *MessageExpectation { return domain.Message(text) }

// MessageMatching expects a match of expr somewhere in the error message.
func MessageMatching(expr string) *MessageExpectation { return domain.MessageMatching(expr) }

// MessagePattern expects a match of re somewhere in the error message.
func MessagePattern(re *regexp.Regexp) *MessageExpectation { return domain.MessagePattern(re) }

// CountFailures counts failed results across groups.
func CountFailures(groups []ResolvedTestGroupResults) int { return domain.CountFailures(groups) }

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used while declaring and running.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Context) { c.logger = logger }
}

// WithGuard registers running tests on guard instead of a private one.
func WithGuard(guard *exitguard.Guard) Option {
	return func(c *Context) { c.guard = guard }
}

// WithFailFast stops a run after the first failed test.
func WithFailFast() Option {
	return func(c *Context) { c.failFast = true }
}

// Context collects declared groups until they are run.
type Context struct {
	declared *declaration.Context
	guard    *exitguard.Guard
	logger   zerolog.Logger
	failFast bool
}

// NewContext creates an empty Context.
func NewContext(opts ...Option) *Context {
	c := &Context{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.guard == nil {
		c.guard = exitguard.New()
	}
	c.declared = declaration.NewContext(c.logger)
	return c
}

// Group declares a group. Its caller is the line calling Group.
func (c *Context) Group(in GroupInput) (TestGroupOutput, error) {
	return c.declared.DeclareSkip(in, 1)
}

// GroupFunc declares a group without a description.
func (c *Context) GroupFunc(tests func(runTest RunTest)) (TestGroupOutput, error) {
	return c.declared.DeclareFuncSkip(tests, 1)
}

// GroupAsync declares a group whose callback may block.
func (c *Context) GroupAsync(ctx context.Context, in AsyncGroupInput) (*Pending, error) {
	return c.declared.DeclareAsyncSkip(ctx, in, 1)
}

// Clear drops every declared group.
func (c *Context) Clear() { c.declared.Clear() }

// Drain waits for pending declarations and returns every group, emptying c.
func (c *Context) Drain(ctx context.Context) ([]TestGroupOutput, error) {
	return c.declared.Drain(ctx)
}

// Run drains c and runs what was declared.
func (c *Context) Run(ctx context.Context) ([]ResolvedTestGroupResults, error) {
	groups, err := c.Drain(ctx)
	if err != nil {
		return nil, err
	}
	return c.RunGroups(ctx, groups...)
}

// RunGroups filters and runs groups in order. Test failures are results;
// the error is a definition error or an interrupted run.
func (c *Context) RunGroups(ctx context.Context, groups ...TestGroupOutput) ([]ResolvedTestGroupResults, error) {
	runner := execution.NewRunner(execution.NewExecutor(c.guard, c.logger), c.logger)
	runner.SetFailFast(c.failFast)
	results, _, err := runner.Run(ctx, selection.Filter(groups))
	return results, err
}

// RunGroups runs groups with default options.
func RunGroups(ctx context.Context, groups ...TestGroupOutput) ([]ResolvedTestGroupResults, error) {
	return NewContext().RunGroups(ctx, groups...)
}
