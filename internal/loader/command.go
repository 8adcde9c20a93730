package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command is one process invocation declared by a test file.
type Command struct {
	// Argv is run directly; Shell is run with "sh -c" when Argv is empty.
	Argv  []string
	Shell string
	Dir   string
	// Env entries (KEY=value) are appended to the current environment.
	Env   []string
	Stdin string
}

// CommandError is a failed command with the stderr it produced.
type CommandError struct {
	Err    error
	Stderr string
}

func (e *CommandError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

// CommandRunner executes test commands
type CommandRunner struct {
	shell string
}

// NewCommandRunner creates a new CommandRunner
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{shell: "sh"}
}

// Run executes cmd and returns its stdout. A non-zero exit or a failure to
// start is returned as a *CommandError wrapping the exec error.
func (r *CommandRunner) Run(ctx context.Context, cmd Command) (string, error) {
	var c *exec.Cmd
	switch {
	case len(cmd.Argv) > 0:
		c = exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	case cmd.Shell != "":
		c = exec.CommandContext(ctx, r.shell, "-c", cmd.Shell)
	default:
		return "", fmt.Errorf("empty command")
	}

	// Set environment variables
	c.Env = os.Environ() // Start with current environment
	c.Env = append(c.Env, cmd.Env...)

	c.Dir = cmd.Dir
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		return stdout.String(), &CommandError{Err: err, Stderr: stderr.String()}
	}
	return stdout.String(), nil
}
