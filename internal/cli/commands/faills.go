package commands

import (
	"github.com/spf13/cobra"
)

// FaillsCommand handles the faills command
type FaillsCommand struct {
	app *App
}

// NewFaillsCommand creates a new FaillsCommand
func NewFaillsCommand(app *App) *FaillsCommand {
	return &FaillsCommand{app: app}
}

// Execute runs the command
func (fc *FaillsCommand) Execute(cmd *cobra.Command, args []string) error {
	results, err := fc.app.Storage.Load()
	if err != nil {
		return err
	}

	return fc.app.Viewer.View(results)
}
