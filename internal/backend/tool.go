// SPDX-License-Identifier: MPL-2.0

// Package backend builds and runs pip/uv command lines. The two tools sit
// behind a single interface so the manager layer stays backend-agnostic.
package backend

import (
	"strings"

	"mvdan.cc/sh/v3/shell"
)

type (
	// Command is a fully assembled subprocess invocation.
	Command struct {
		Program string
		Args    []string
	}

	// InstallOptions carries the flags accepted by install-family commands.
	InstallOptions struct {
		// IndexURL is a custom package index (--index-url).
		IndexURL string
		// Upgrade adds --upgrade.
		Upgrade bool
		// ForceReinstall adds --force-reinstall. Never set implicitly; see
		// the reconciler's policy.
		ForceReinstall bool
		// NoDeps adds --no-deps.
		NoDeps bool
		// RequirementsFile installs from a requirements file (-r).
		RequirementsFile string
		// EditablePath installs a local project in editable mode (-e).
		EditablePath string
		// ExtraArgs are appended verbatim before the package list.
		ExtraArgs []string
	}

	// Tool builds command lines for one package-manager backend, bound to a
	// target interpreter. Implementations are PipTool and UvTool.
	Tool interface {
		// Name is the backend identifier ("pip" or "uv").
		Name() string
		// PythonExecutable is the interpreter whose environment the tool mutates.
		PythonExecutable() string
		// InstallCommand builds an install invocation for the given package
		// specifiers. The package list may be empty when opts targets a
		// requirements file or an editable path.
		InstallCommand(packages []string, opts InstallOptions) Command
		// UninstallCommand builds a non-interactive uninstall invocation.
		UninstallCommand(packages []string, extraArgs []string) Command
		// ListCommand builds an installed-package listing invocation with
		// JSON output.
		ListCommand() Command
		// ShowCommand builds a package-details invocation.
		ShowCommand(pkg string) Command
		// VenvCommand builds a virtual-environment creation invocation.
		// pythonVersion may be empty; support varies by backend.
		VenvCommand(path, pythonVersion string) Command
	}

	// ToolRunner is implemented by backends that can execute a command-line
	// tool in an ephemeral environment without installing it (uv).
	ToolRunner interface {
		// ToolRunCommand builds the ephemeral tool invocation.
		ToolRunCommand(command []string) Command
	}
)

// SplitExtraArgs splits a flag string like `--no-cache-dir --timeout 60`
// into argv fields with shell quoting rules.
func SplitExtraArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return shell.Fields(s, nil)
}

// installArgs builds the shared install argument tail: flags first, then the
// requirements file / editable path / package specifiers, matching pip's
// conventional ordering.
func installArgs(opts InstallOptions, packages []string) []string {
	args := make([]string, 0, len(packages)+8)

	if opts.Upgrade {
		args = append(args, "--upgrade")
	}
	if opts.ForceReinstall {
		args = append(args, "--force-reinstall")
	}
	if opts.NoDeps {
		args = append(args, "--no-deps")
	}
	if opts.IndexURL != "" {
		args = append(args, "--index-url", opts.IndexURL)
	}
	args = append(args, opts.ExtraArgs...)

	if opts.RequirementsFile != "" {
		args = append(args, "-r", opts.RequirementsFile)
	}
	if opts.EditablePath != "" {
		args = append(args, "-e", opts.EditablePath)
	}

	return append(args, packages...)
}

// String renders the command for logs and dry-run echoes. Arguments
// containing whitespace are quoted.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Program))
	for _, a := range c.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(s string) string {
	if strings.ContainsAny(s, " \t") && !strings.HasPrefix(s, `"`) {
		return `"` + s + `"`
	}
	return s
}
