// Package parser turns resolved group results into the failure records kept
// in the JSON report.
package parser

import "virtest/internal/domain"

// Parser extracts failures from a resolved group.
type Parser interface {
	ParseFailures(group domain.ResolvedTestGroupResults) []domain.TestFailure
}

// ParseAll runs p over every group, keeping run order.
func ParseAll(p Parser, groups []domain.ResolvedTestGroupResults) []domain.TestFailure {
	failures := []domain.TestFailure{}
	for _, group := range groups {
		failures = append(failures, p.ParseFailures(group)...)
	}
	return failures
}
