// Package executil runs user-supplied shell hooks through sh -c.
package executil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	shell = "sh"

	// killGrace is how long a cancelled script has to exit after SIGINT
	// before it is killed.
	killGrace = 3 * time.Second

	// maxErrOutput caps how much output is folded into an error message.
	maxErrOutput = 500
)

// Script is one shell invocation.
type Script struct {
	Source string   // passed to sh -c
	Dir    string   // empty inherits the working directory
	Env    []string // KEY=VALUE pairs added to the inherited environment
}

// Executor runs scripts.
type Executor interface {
	// Output runs s and returns its combined output.
	Output(ctx context.Context, s Script) ([]byte, error)
	// Stream runs s with its output connected to stdout and stderr.
	Stream(ctx context.Context, s Script, stdout, stderr io.Writer) error
}

// RealExecutor runs scripts with the system shell. Cancelling the context
// interrupts the script.
type RealExecutor struct{}

var _ Executor = (*RealExecutor)(nil)

// Output runs s. On failure the tail of the output is included in the
// error, which still wraps the *exec.ExitError.
func (e *RealExecutor) Output(ctx context.Context, s Script) ([]byte, error) {
	out, err := e.command(ctx, s).CombinedOutput()
	if err == nil {
		return out, nil
	}
	if msg := errOutput(out); msg != "" {
		return out, fmt.Errorf("%s: %w", msg, err)
	}
	return out, err
}

// Stream runs s, copying its output as it is produced.
func (e *RealExecutor) Stream(ctx context.Context, s Script, stdout, stderr io.Writer) error {
	c := e.command(ctx, s)
	c.Stdout = stdout
	c.Stderr = stderr
	return c.Run()
}

func (e *RealExecutor) command(ctx context.Context, s Script) *exec.Cmd {
	c := exec.CommandContext(ctx, shell, "-c", s.Source)
	c.Dir = s.Dir
	if len(s.Env) > 0 {
		c.Env = append(os.Environ(), s.Env...)
	}
	c.Cancel = func() error { return c.Process.Signal(os.Interrupt) }
	c.WaitDelay = killGrace
	return c
}

// errOutput trims out to its last maxErrOutput bytes of text.
func errOutput(out []byte) string {
	msg := strings.TrimSpace(strings.ToValidUTF8(string(out), ""))
	if len(msg) > maxErrOutput {
		msg = "..." + strings.ToValidUTF8(msg[len(msg)-maxErrOutput:], "")
	}
	return msg
}

// ExitCode extracts the process exit status from err. It reports false when
// err is nil or the script never produced an exit status (shell missing,
// killed by a signal).
func ExitCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var coded interface{ ExitCode() int }
	if !errors.As(err, &coded) {
		return 0, false
	}
	code := coded.ExitCode()
	if code < 0 {
		return 0, false
	}
	return code, true
}

// ExitError is a synthetic exit status for fakes.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode returns the status code.
func (e *ExitError) ExitCode() int { return e.Code }
