package ui

import (
	"virtest/internal/domain"
	"virtest/internal/execution"
)

// Viewer displays test results in an interactive TUI
type Viewer interface {
	View(results *domain.TestResultsOutput) error
}

var (
	_ Viewer             = (*ErrorViewer)(nil)
	_ execution.Progress = (*ProgressBar)(nil)
)
