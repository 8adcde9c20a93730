package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"virtest/internal/cli"
	"virtest/internal/cli/commands"
	"virtest/internal/exitguard"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	guard := exitguard.New()
	reported := reportPending(ctx, guard, os.Stderr)
	code := execute(ctx, guard)

	// stop cancels ctx, so the reporter always finishes.
	stop()
	<-reported
	return code
}

// reportPending names the tests still running once ctx is done. The
// returned channel is closed after everything was written.
func reportPending(ctx context.Context, guard *exitguard.Guard, w io.Writer) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		for _, err := range guard.Fire() {
			fmt.Fprintln(w, color.RedString("%v", err))
		}
	}()
	return done
}

func execute(ctx context.Context, guard *exitguard.Guard) int {
	rootCmd := &cobra.Command{
		Use:           "virtest",
		Short:         "Declarative test runner",
		Long:          `Run declarative test groups from YAML test files: select forced and excluded tests, execute them and report every result.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var flags cli.Flags
	cmds := commands.NewCommands(guard, os.Stdout)
	cmds.Register(rootCmd, &flags)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if commands.IsTestFailure(err) {
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
