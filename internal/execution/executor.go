package execution

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"virtest/internal/caller"
	"virtest/internal/domain"
	"virtest/internal/exitguard"
	"virtest/internal/matcher"
)

var errGoexit = errors.New("test body called runtime.Goexit")

// settlement is what a test body produced: its output or what it threw.
type settlement struct {
	output any
	thrown error
}

// Executor runs individual tests and classifies their outcome.
type Executor struct {
	guard  *exitguard.Guard
	logger zerolog.Logger
}

// NewExecutor creates a new Executor. Every running test is registered on
// guard so a process shutting down can name it.
func NewExecutor(guard *exitguard.Guard, logger zerolog.Logger) *Executor {
	if guard == nil {
		guard = exitguard.New()
	}
	return &Executor{guard: guard, logger: logger}
}

// Run executes one test. Test failures are always returned as a result; the
// error is reserved for definition errors in the input. If ctx is done while
// the body is still running, the result is an Error carrying an
// UnresolvablePromiseError.
func (e *Executor) Run(ctx context.Context, input domain.Input, testCaller caller.Caller) (domain.IndividualTestResult, error) {
	if err := domain.ValidateInput(input); err != nil {
		return domain.IndividualTestResult{}, err
	}
	description := input.Properties().Description

	remove := e.guard.Add(func() error {
		return domain.NewUnresolvablePromiseError(description, testCaller, nil)
	})
	defer remove()

	e.logger.Debug().Str("test", description).Str("caller", testCaller.String()).Msg("running test")

	done := e.start(input)
	select {
	case s := <-done:
		return e.classify(input, testCaller, s)
	case <-ctx.Done():
		select {
		case s := <-done:
			return e.classify(input, testCaller, s)
		default:
		}
		e.logger.Warn().Str("test", description).Str("caller", testCaller.String()).Msg("test never settled")
		return domain.ErrorResult(input, testCaller, domain.NewUnresolvablePromiseError(description, testCaller, ctx.Err())), nil
	}
}

// start invokes the body on its own goroutine. Panics and Goexit are
// reported as thrown errors.
func (e *Executor) start(input domain.Input) <-chan settlement {
	done := make(chan settlement, 1)
	go func() {
		returned := false
		defer func() {
			if returned {
				return
			}
			if r := recover(); r != nil {
				done <- settlement{thrown: domain.NewPanicError(r)}
				return
			}
			done <- settlement{thrown: errGoexit}
		}()

		output, err := input.Run()
		returned = true
		done <- settlement{output: output, thrown: err}
	}()
	return done
}

// classify applies the result-state decision table. A fault inside the
// table itself becomes an Error result carrying an InternalError.
func (e *Executor) classify(input domain.Input, testCaller caller.Caller, s settlement) (result domain.IndividualTestResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.ErrorResult(input, testCaller, domain.NewInternalError(domain.NewPanicError(r), "classifying test result"))
			err = nil
		}
	}()

	expectError := input.ErrorExpected()
	if s.thrown != nil || expectError != nil {
		if expectError == nil {
			return domain.ErrorResult(input, testCaller, s.thrown), nil
		}
		matched, err := matcher.ErrorsMatch(s.thrown, expectError)
		if err != nil {
			if domain.IsDefinitionError(err) {
				return domain.IndividualTestResult{}, err
			}
			return domain.ErrorResult(input, testCaller, domain.NewInternalError(err, "matching thrown error")), nil
		}
		return domain.ErrorMatchResult(input, testCaller, s.thrown, matched), nil
	}

	if expected, ok := input.Expected(); ok {
		equal, err := matcher.ValuesEqual(expected, s.output)
		if err != nil {
			return domain.ErrorResult(input, testCaller, err), nil
		}
		return domain.ExpectMatchResult(input, testCaller, s.output, equal), nil
	}

	return domain.NoCheckPassResult(input, testCaller), nil
}
