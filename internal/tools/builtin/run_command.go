package builtin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"reagent/internal/toolregistry"
)

type runCommand struct {
	workspace      string
	defaultTimeout time.Duration
}

// NewRunCommand returns the run_command tool.
func NewRunCommand(cfg Config) toolregistry.Tool {
	return &runCommand{workspace: cfg.WorkspaceDir, defaultTimeout: cfg.CommandTimeout}
}

func (t *runCommand) Definition() toolregistry.Definition {
	return toolregistry.Definition{
		Name:        "run_command",
		Description: "Run a shell command and get its output.",
		Parameters: map[string]toolregistry.Parameter{
			"command": {Type: "string", Description: "The command to run."},
			"timeout": {Type: "integer", Description: "Optional timeout in seconds (default: 30)."},
		},
		Output: "The command output (stdout and stderr) and exit code.",
	}
}

func (t *runCommand) Execute(ctx context.Context, input map[string]any) (string, error) {
	command, err := stringArg(input, "command")
	if err != nil {
		return "", err
	}

	timeout := t.defaultTimeout
	if secs, ok, err := intArg(input, "timeout"); err != nil {
		return "", err
	} else if ok && secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	if t.workspace != "" {
		cmd.Dir = t.workspace
	}
	// Run the command in its own process group and kill the whole group on
	// timeout; otherwise children of the shell survive the parent.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("Error: Command timed out after %d seconds: %s",
			int(timeout.Seconds()), command), nil
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return fmt.Sprintf("Error running command: %v", runErr), nil
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Command: %s\n", command)
	fmt.Fprintf(&b, "Exit code: %d\n", exitCode)
	if out := stdout.String(); out != "" {
		fmt.Fprintf(&b, "\nSTDOUT:\n%s", out)
	}
	if errOut := stderr.String(); errOut != "" {
		fmt.Fprintf(&b, "\nSTDERR:\n%s", errOut)
	}
	return b.String(), nil
}
