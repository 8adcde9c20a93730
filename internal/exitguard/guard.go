// Package exitguard tracks tests that are still running so that a process
// shutting down can name them instead of exiting silently.
package exitguard

import (
	"sort"
	"sync"
)

// Guard is a registry of callbacks for pending work. The zero value is not
// usable; use New.
type Guard struct {
	mu        sync.Mutex
	next      int
	callbacks map[int]func() error
}

// New creates an empty Guard.
func New() *Guard {
	return &Guard{callbacks: make(map[int]func() error)}
}

// Add registers cb and returns a function that unregisters it. The returned
// function is safe to call more than once.
func (g *Guard) Add(cb func() error) (remove func()) {
	g.mu.Lock()
	id := g.next
	g.next++
	g.callbacks[id] = cb
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.callbacks, id)
			g.mu.Unlock()
		})
	}
}

// Pending is the number of registered callbacks.
func (g *Guard) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.callbacks)
}

// Fire invokes every registered callback in registration order, clears the
// registry and returns the non-nil errors.
func (g *Guard) Fire() []error {
	g.mu.Lock()
	ids := make([]int, 0, len(g.callbacks))
	for id := range g.callbacks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	callbacks := make([]func() error, 0, len(ids))
	for _, id := range ids {
		callbacks = append(callbacks, g.callbacks[id])
	}
	g.callbacks = make(map[int]func() error)
	g.mu.Unlock()

	var errs []error
	for _, cb := range callbacks {
		if err := cb(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
