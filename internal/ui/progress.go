package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar shows how many runnable tests have settled during a run.
type ProgressBar struct {
	bar   *progressbar.ProgressBar
	total int
}

// NewProgressBar sizes a bar for total tests, drawn on w (stderr when nil).
func NewProgressBar(total int, w io.Writer) *ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	if total < 1 {
		total = 1
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(progressDescription(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(!color.NoColor),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar, total: total}
}

// Update moves the bar to passed+failed settled tests.
func (p *ProgressBar) Update(passed, failed int) {
	settled := passed + failed
	if settled > p.total {
		settled = p.total
	}
	_ = p.bar.Set(settled)
	p.bar.Describe(progressDescription(passed, failed))
}

// Finish fills the bar even when a run stopped early.
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

func progressDescription(passed, failed int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}
