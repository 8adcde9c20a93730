package discovery

import (
	"path/filepath"
	"strings"
)

// Filter filters test files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the test files whose base name matches pattern.
// Supports patterns like "*math.vir.yaml" or "*payment*"
func (f *Filter) FilterByName(tests []string, pattern string) []string {
	if pattern == "" {
		return tests
	}

	filtered := make([]string, 0, len(tests))
	for _, test := range tests {
		if Match(pattern, filepath.Base(test)) {
			filtered = append(filtered, test)
		}
	}
	return filtered
}

// Match reports whether name matches pattern. Wildcard patterns are tried
// with filepath.Match first, then as ordered fragments ("*user*test*");
// plain patterns match as substrings.
func Match(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}
	if !strings.Contains(pattern, "*") {
		return false
	}

	rest := name
	hasFragment := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		hasFragment = true
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}
	return hasFragment
}
