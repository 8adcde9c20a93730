package vir

import (
	"context"
	"io"

	"github.com/acarl005/stripansi"

	"virtest/internal/domain"
	"virtest/internal/ui"
)

// Resolve runs groups inside a Go test and reports every failed result
// through t.Errorf. A definition error stops t with t.Fatalf.
func Resolve(t TB, groups ...TestGroupOutput) []ResolvedTestGroupResults {
	t.Helper()

	results, err := RunGroups(context.Background(), groups...)
	if err != nil {
		t.Fatalf("running test groups: %v", err)
		return results
	}

	formatter := ui.NewFormatter(nil, io.Discard)
	for _, group := range results {
		for _, result := range group.AllResults {
			if result.Success {
				continue
			}
			t.Errorf("%s\n%s", failureTitle(group, result), stripansi.Strip(formatter.FormatResult(result)))
		}
	}
	return results
}

// TB is the subset of testing.TB used by Resolve.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

func failureTitle(group ResolvedTestGroupResults, result domain.IndividualTestResult) string {
	title := group.Description
	if title == "" {
		title = group.Caller.String()
	}
	if result.Caller != nil {
		title += " (" + result.Caller.String() + ")"
	}
	return title
}
