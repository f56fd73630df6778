// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
)

// Output modes for subprocess invocations.
const (
	// OutputCapture buffers stdout/stderr into the Result.
	OutputCapture OutputMode = iota
	// OutputStream forwards stdout/stderr to the invoker's writers.
	OutputStream
	// OutputDiscard silences both streams.
	OutputDiscard
)

type (
	// OutputMode selects what happens to the subprocess's streams.
	OutputMode int

	// Invoker runs backend commands one at a time. Callers must not issue
	// concurrent invocations against the same environment; the underlying
	// package managers do not guarantee safety under concurrent mutation.
	Invoker struct {
		// Logger receives execution logging. Must not be nil; use
		// log.New(io.Discard) to silence.
		Logger *log.Logger
		// Stdout and Stderr receive subprocess output in OutputStream mode.
		// Nil values default to the process's own streams.
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewInvoker creates an Invoker with the given logger.
func NewInvoker(logger *log.Logger) *Invoker {
	return &Invoker{Logger: logger}
}

// Run executes the command and returns its Result. With dryRun set, the
// command is rendered but never executed and the Result reports success.
// The child environment forces UTF-8 interpreter I/O (PYTHONUTF8=1) so
// captured output decodes consistently across platforms.
func (iv *Invoker) Run(ctx context.Context, command Command, mode OutputMode, dryRun bool) *Result {
	cmdline := command.String()

	if dryRun {
		iv.Logger.Info("dry run", "command", cmdline)
		return NewDryRunResult(cmdline)
	}

	iv.Logger.Debug("executing", "command", cmdline)

	cmd := exec.CommandContext(ctx, command.Program, command.Args...)
	cmd.Env = append(os.Environ(), "PYTHONUTF8=1")

	var stdout, stderr bytes.Buffer
	switch mode {
	case OutputCapture:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	case OutputStream:
		cmd.Stdout = iv.stdout()
		cmd.Stderr = iv.stderr()
	case OutputDiscard:
		// exec leaves nil streams attached to /dev/null.
	}

	err := cmd.Run()
	result := &Result{
		Output:      stdout.String(),
		ErrOutput:   stderr.String(),
		CommandLine: cmdline,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = ExitCode(exitErr.ExitCode())
		} else {
			result.ExitCode = 1
			result.Err = err
		}
	}

	if result.Success() {
		iv.Logger.Debug("command succeeded", "command", cmdline)
	} else {
		iv.Logger.Error("command failed", "command", cmdline, "exit_code", result.ExitCode, "err", result.Err)
	}

	return result
}

func (iv *Invoker) stdout() io.Writer {
	if iv.Stdout != nil {
		return iv.Stdout
	}
	return os.Stdout
}

func (iv *Invoker) stderr() io.Writer {
	if iv.Stderr != nil {
		return iv.Stderr
	}
	return os.Stderr
}
