// SPDX-License-Identifier: MPL-2.0

package backend

import "strings"

type (
	// Result contains the outcome of one package-manager invocation. It
	// replaces the bool-plus-log-side-channel reporting of ad-hoc wrappers:
	// the exit code, captured streams, and rendered command line travel
	// together so callers can build their own diagnostics.
	Result struct {
		// ExitCode is the subprocess exit status. Dry runs report 0.
		ExitCode ExitCode
		// Output is the captured standard output (empty unless capture was requested).
		Output string
		// ErrOutput is the captured standard error (empty unless capture was requested).
		ErrOutput string
		// CommandLine is the full command as it was (or would have been) executed.
		CommandLine string
		// DryRun is true when the command was constructed but not executed.
		DryRun bool
		// Err is set only for infrastructure failures (program missing,
		// context canceled), never for plain non-zero exits.
		Err error
	}
)

// NewErrorResult creates a Result for an infrastructure failure.
func NewErrorResult(cmdline string, err error) *Result {
	return &Result{ExitCode: 1, CommandLine: cmdline, Err: err}
}

// NewDryRunResult creates a successful Result describing the command that
// would have been executed.
func NewDryRunResult(cmdline string) *Result {
	return &Result{
		CommandLine: cmdline,
		DryRun:      true,
		Output:      "dry run: command would be '" + cmdline + "'",
	}
}

// Success reports whether the invocation succeeded: no infrastructure error
// and a zero exit code. Dry runs are successful by construction.
func (r *Result) Success() bool {
	return r.Err == nil && r.ExitCode.IsSuccess()
}

// Diagnostic returns a human-readable failure description combining the exit
// status with whatever streams were captured. Returns "" for successful results.
func (r *Result) Diagnostic() string {
	if r.Success() {
		return ""
	}

	var msg strings.Builder
	if r.Err != nil {
		msg.WriteString(r.Err.Error())
	} else {
		msg.WriteString("command failed with exit code ")
		msg.WriteString(r.ExitCode.String())
	}
	msg.WriteString(": ")
	msg.WriteString(r.CommandLine)

	if out := strings.TrimSpace(r.Output); out != "" {
		msg.WriteString("\n--- stdout ---\n")
		msg.WriteString(out)
	}
	if errOut := strings.TrimSpace(r.ErrOutput); errOut != "" {
		msg.WriteString("\n--- stderr ---\n")
		msg.WriteString(errOut)
	}

	return msg.String()
}
