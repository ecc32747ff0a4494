package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result is the captured outcome of one external command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Err converts a non-zero exit into an *ExitError. It returns nil on success.
func (r Result) Err(argv []string) error {
	if r.ExitCode == 0 {
		return nil
	}
	return &ExitError{Argv: argv, Code: r.ExitCode, Stderr: r.Stderr}
}

// Runner executes external commands. A command that ran and exited non-zero
// is not an error: the caller inspects Result.ExitCode. Only failures to
// launch or complete the process are returned as errors.
type Runner interface {
	Run(ctx context.Context, argv ...string) (Result, error)
}

// LaunchError reports that a command could not be started or did not run to
// completion (binary missing, permission denied, timeout).
type LaunchError struct {
	Argv []string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", strings.Join(e.Argv, " "), e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Argv   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", strings.Join(e.Argv, " "), e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// ExecRunner runs commands as local subprocesses.
type ExecRunner struct {
	// Timeout bounds every command. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Run executes argv and captures stdout, stderr and the exit code.
func (r ExecRunner) Run(ctx context.Context, argv ...string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, &LaunchError{Err: errors.New("empty command")}
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	res := Result{
		Stdout: stdout.String(),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, &LaunchError{Argv: argv, Err: ctxErr}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, &LaunchError{Argv: argv, Err: err}
}
