package commands

import (
	"io"

	"github.com/spf13/cobra"
	"virtest/internal/cli"
	"virtest/internal/config"
	"virtest/internal/exitguard"
)

// Commands holds all CLI commands. They are wired once flags are parsed.
type Commands struct {
	Run    *RunCommand
	List   *ListCommand
	Faills *FaillsCommand

	guard *exitguard.Guard
	out   io.Writer
}

// NewCommands creates the command set. Tests run by any command register on guard.
func NewCommands(guard *exitguard.Guard, out io.Writer) *Commands {
	return &Commands{guard: guard, out: out}
}

// wire loads the configuration and builds every command from it.
func (c *Commands) wire(flags *cli.Flags) error {
	cfg, err := config.Load(flags.ToConfigFlags())
	if err != nil {
		return err
	}
	app := NewApp(cfg, c.guard, c.out)
	c.Run = NewRunCommand(app)
	c.List = NewListCommand(app)
	c.Faills = NewFaillsCommand(app)
	return nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Path to the project config file (default ./"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Print every test result and its output")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.wire(flags)
	}

	// Run command
	runCmd := &cobra.Command{
		Use:   "run [files, directories or globs...]",
		Short: "Run test files",
		Long:  "Import the given test files (or the configured test path), run every selected test and report the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run.Execute(cmd, args)
		},
	}
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., '*math*')")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test failure")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list [files, directories or globs...]",
		Short: "List discovered tests",
		Long:  "Import test files and list their groups without executing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.List.Execute(cmd, args)
		},
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards, e.g., '*math*')")
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test groups and tests for every file")
	rootCmd.AddCommand(listCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:   "faills",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last test run in an interactive viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Faills.Execute(cmd, args)
		},
	}
	rootCmd.AddCommand(faillsCmd)
}
