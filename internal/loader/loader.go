// Package loader imports test files by declaring their groups into a
// declaration.Context.
package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"virtest/internal/declaration"
)

// Loader declares every group of one file into declared.
type Loader interface {
	Load(ctx context.Context, path string, declared *declaration.Context) error
}

// Registry picks a Loader by file name suffix.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register binds suffix (e.g. ".vir.yaml") to l.
func (r *Registry) Register(suffix string, l Loader) {
	r.loaders[suffix] = l
}

// Suffixes lists the registered suffixes.
func (r *Registry) Suffixes() []string {
	suffixes := make([]string, 0, len(r.loaders))
	for suffix := range r.loaders {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)
	return suffixes
}

// lookup returns the loader with the longest matching suffix.
func (r *Registry) lookup(path string) (Loader, bool) {
	var (
		best    Loader
		bestLen = -1
	)
	for suffix, l := range r.loaders {
		if strings.HasSuffix(path, suffix) && len(suffix) > bestLen {
			best, bestLen = l, len(suffix)
		}
	}
	return best, best != nil
}

// Load imports path with the matching loader.
func (r *Registry) Load(ctx context.Context, path string, declared *declaration.Context) error {
	l, ok := r.lookup(path)
	if !ok {
		return fmt.Errorf("unsupported test file %s (supported: %s)", path, strings.Join(r.Suffixes(), ", "))
	}
	return l.Load(ctx, path, declared)
}
