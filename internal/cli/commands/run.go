package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/acarl005/stripansi"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"virtest/internal/domain"
	"virtest/internal/execution"
	"virtest/internal/parser"
	"virtest/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	app *App
	// quiet disables the progress bar.
	quiet bool
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(app *App) *RunCommand {
	return &RunCommand{app: app, quiet: app.Config.Debug}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := rc.app.Config

	if !rc.quiet {
		rc.app.Orchestrator.SetProgress(func(total int) execution.Progress {
			if total == 0 {
				return nil
			}
			return ui.NewProgressBar(total, os.Stderr)
		})
	}

	result, err := rc.app.Orchestrator.RunFiles(cmd.Context(), rc.app.inputs(args))
	if err != nil {
		if result == nil || domain.IsDefinitionError(err) {
			return err
		}
		// interrupted: report what finished
		rc.app.Formatter.PrintResults(result.Groups)
		return err
	}

	if len(result.Found) == 0 && len(result.Lost) == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	rc.app.Formatter.PrintResults(result.Groups)

	failures := parser.ParseAll(rc.app.Parser, result.Groups)
	output, err := rc.app.Storage.Save(result.Groups, failures, result.Duration)
	if err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}
	rc.app.Logger.Debug().Str("run_id", output.Meta.RunID).Str("path", cfg.GetOutputPath()).Msg("saved test results")

	fmt.Fprintln(cmd.OutOrStdout())
	rc.app.Formatter.PrintMetaStats(output)

	count := domain.CountFailures(result.Groups)
	if count == 0 {
		return nil
	}
	if cfg.Flags.OpenFaills {
		if err := rc.app.Viewer.View(output); err != nil {
			return err
		}
	}
	return &domain.TestError{
		Message:  stripansi.Strip(ui.FinalMessage(result.Groups)),
		Failures: count,
	}
}

// IsTestFailure reports whether err only signals failed tests, which the
// command has already printed.
func IsTestFailure(err error) bool {
	var testErr *domain.TestError
	return errors.As(err, &testErr)
}
