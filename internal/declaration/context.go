// Package declaration records test groups without running them.
//
// A Context collects every group declared during an import. Its lifecycle is
// Clear before a run, Declare/DeclareAsync while files are imported, then
// Drain once importing is done. Declarations are serialized: a group's tests
// are collected only after the previous group finished declaring. Inside a
// tests callback, further groups are declared with DeclareAsync, which queues
// them behind the running one; Declare there is a definition error.
package declaration

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"virtest/internal/domain"
)

// Context is the explicitly passed collection of declared groups.
type Context struct {
	mu      sync.Mutex
	pending []*Pending
	// last is closed once the most recent declaration settled.
	last <-chan struct{}
	// active is the declaration whose tests callback is running, if any.
	active *activeDeclaration
	logger zerolog.Logger
}

type activeDeclaration struct {
	description string
	// ctx is set for async callbacks and nil for synchronous ones.
	ctx context.Context
}

// NewContext creates an empty declaration context.
func NewContext(logger zerolog.Logger) *Context {
	return &Context{logger: logger}
}

// Clear forgets every recorded group. Declarations still in flight finish but
// are not returned by the next Drain.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// Len is the number of recorded groups, settled or not.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Drain waits for every recorded group to settle, returns them in
// declaration order and clears the context. Errors of individual
// declarations are joined; groups that did settle are still returned.
func (c *Context) Drain(ctx context.Context) ([]domain.TestGroupOutput, error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	groups := make([]domain.TestGroupOutput, 0, len(pending))
	var errs []error
	for _, p := range pending {
		group, err := p.Wait(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return groups, ctxErr
			}
			errs = append(errs, err)
			continue
		}
		groups = append(groups, group)
	}

	c.logger.Debug().Int("groups", len(groups)).Int("errors", len(errs)).Msg("drained declarations")
	return groups, errors.Join(errs...)
}

// enqueue reserves the next declaration slot. The returned channel is closed
// when the previous declaration settled; it is nil for the first one. active
// is the declaration collecting tests at the time of the call.
func (c *Context) enqueue() (p *Pending, previous <-chan struct{}, active *activeDeclaration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p = &Pending{done: make(chan struct{})}
	previous = c.last
	c.last = p.done
	c.pending = append(c.pending, p)
	return p, previous, c.active
}

// enqueueSync is enqueue for a synchronous declaration. A synchronous
// callback runs on the declaring goroutine, so a declaration made while one
// is collecting comes from inside it and could never be served.
func (c *Context) enqueueSync(description string) (*Pending, <-chan struct{}, *activeDeclaration, error) {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active != nil && active.ctx == nil {
		return nil, nil, nil, domain.NewDefinitionError(
			"test group %q declared inside the tests callback of group %q; declare groups at the top level of a file",
			description, active.description)
	}
	p, previous, active := c.enqueue()
	return p, previous, active, nil
}

// collecting marks d as the running callback until the returned func is called.
func (c *Context) collecting(d *activeDeclaration) (done func()) {
	c.mu.Lock()
	c.active = d
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		if c.active == d {
			c.active = nil
		}
		c.mu.Unlock()
	}
}

// Pending is a group whose declaration callback may not have settled yet.
type Pending struct {
	done  chan struct{}
	group domain.TestGroupOutput
	err   error
}

func (p *Pending) settle(group domain.TestGroupOutput, err error) {
	p.group = group
	p.err = err
	close(p.done)
}

// Done is closed once the group settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the group settled or ctx is done.
func (p *Pending) Wait(ctx context.Context) (domain.TestGroupOutput, error) {
	select {
	case <-p.done:
		return p.group, p.err
	case <-ctx.Done():
		return domain.TestGroupOutput{}, ctx.Err()
	}
}
