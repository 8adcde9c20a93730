package commands

import (
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// NewListCommand creates a new ListCommand
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	collection, err := lc.app.Orchestrator.Collect(cmd.Context(), lc.app.inputs(args))
	if err != nil {
		return err
	}

	for _, lost := range collection.Lost {
		color.Yellow("File not found: %s", lost)
	}
	for _, failure := range collection.ImportFailures {
		color.Red("%v", failure)
	}

	if len(collection.Found) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	lc.app.Formatter.PrintTestList(collection.Found, collection.Groups, lc.app.Config.Flags.TestCases, lc.failedFiles())
	return nil
}

// failedFiles are the files with unresolved failures in the last report.
// A missing report means nothing is marked.
func (lc *ListCommand) failedFiles() map[string]struct{} {
	output, err := lc.app.Storage.Load()
	if err != nil {
		lc.app.Logger.Debug().Err(err).Msg("no previous results")
		return nil
	}
	failed := make(map[string]struct{})
	for _, failure := range output.Details {
		if !failure.Resolved && failure.FilePath != "" {
			failed[filepath.Clean(failure.FilePath)] = struct{}{}
		}
	}
	return failed
}
