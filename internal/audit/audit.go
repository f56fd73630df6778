// SPDX-License-Identifier: MPL-2.0

// Package audit wraps the external pip-audit executable for vulnerability
// checks against a target environment.
package audit

import (
	"context"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"pyforge-cli/internal/backend"
)

const executableName = "pip-audit"

type (
	// Report is the outcome of one vulnerability check. Found follows a
	// conservative policy: when the audit tool is missing or errors out, the
	// check reports vulnerabilities as present rather than silently passing.
	Report struct {
		// Found is true when vulnerabilities were found or could not be
		// ruled out.
		Found bool
		// Output is the audit tool's report, or a diagnostic explaining why
		// the check could not complete.
		Output string
	}

	// Options select what to audit. With no options set, pip-audit audits
	// the environment it is installed in; it has no flag for pointing at
	// another interpreter.
	Options struct {
		// RequirementsFile audits the dependencies named in a requirements
		// file instead of the current environment.
		RequirementsFile string
		// ExtraArgs are appended to the audit invocation verbatim.
		ExtraArgs []string
	}

	// Auditor runs vulnerability checks. The PATH lookup is injectable for
	// tests; production construction uses exec.LookPath.
	Auditor struct {
		logger   *log.Logger
		invoker  *backend.Invoker
		lookPath func(string) (string, error)
	}
)

// New creates an Auditor using the real PATH lookup.
func New(logger *log.Logger, invoker *backend.Invoker) *Auditor {
	return &Auditor{logger: logger, invoker: invoker, lookPath: exec.LookPath}
}

// Check runs pip-audit and maps its exit status: 0 means no known
// vulnerabilities, 1 means findings, anything else is a tool error. Missing
// tool and tool errors both report Found=true with a diagnostic; Check never
// returns an error.
func (a *Auditor) Check(ctx context.Context, opts Options) Report {
	exe, err := a.lookPath(executableName)
	if err != nil {
		a.logger.Error("audit tool not found on PATH; assuming vulnerabilities present",
			"tool", executableName)
		return Report{
			Found:  true,
			Output: executableName + " not found on PATH; install it with 'pip install pip-audit'",
		}
	}

	args := make([]string, 0, len(opts.ExtraArgs)+2)
	if opts.RequirementsFile != "" {
		args = append(args, "-r", opts.RequirementsFile)
	}
	args = append(args, opts.ExtraArgs...)

	result := a.invoker.Run(ctx, backend.Command{Program: exe, Args: args}, backend.OutputCapture, false)

	combined := strings.TrimSpace(strings.Join([]string{
		strings.TrimSpace(result.Output),
		strings.TrimSpace(result.ErrOutput),
	}, "\n"))

	switch {
	case result.Err != nil:
		a.logger.Error("audit tool failed to run; assuming vulnerabilities present", "err", result.Err)
		return Report{Found: true, Output: "error running " + executableName + ": " + result.Err.Error()}
	case result.ExitCode == 0:
		a.logger.Debug("audit clean")
		return Report{Found: false, Output: combined}
	case result.ExitCode == 1:
		a.logger.Warn("audit found vulnerabilities")
		return Report{Found: true, Output: combined}
	default:
		a.logger.Error("audit tool error; assuming vulnerabilities present", "exit_code", result.ExitCode)
		return Report{
			Found:  true,
			Output: executableName + " error (exit code " + result.ExitCode.String() + "):\n" + combined,
		}
	}
}
