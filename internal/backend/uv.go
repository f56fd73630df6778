// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"fmt"
	"os/exec"
)

type (
	// UvTool drives uv's pip-compatible interface (`uv pip …`), targeting an
	// environment through uv's --python flag.
	UvTool struct {
		executable string
		python     string
	}
)

// NewUvTool creates a uv backend bound to the given interpreter path.
// It fails when the uv executable cannot be found on PATH.
func NewUvTool(python string) (*UvTool, error) {
	exe, err := exec.LookPath("uv")
	if err != nil {
		return nil, fmt.Errorf("uv executable not found on PATH: %w", err)
	}
	return &UvTool{executable: exe, python: python}, nil
}

// Name returns the backend name.
func (t *UvTool) Name() string { return "uv" }

// PythonExecutable returns the interpreter this backend targets.
func (t *UvTool) PythonExecutable() string { return t.python }

func (t *UvTool) pipCommand(sub string, args ...string) Command {
	full := []string{"pip", sub}
	if t.python != "" {
		full = append(full, "--python", t.python)
	}
	return Command{Program: t.executable, Args: append(full, args...)}
}

// InstallCommand builds `uv pip install --python <py> …`.
func (t *UvTool) InstallCommand(packages []string, opts InstallOptions) Command {
	return t.pipCommand("install", installArgs(opts, packages)...)
}

// UninstallCommand builds `uv pip uninstall --python <py> …`.
// uv never prompts, so no -y equivalent is needed.
func (t *UvTool) UninstallCommand(packages []string, extraArgs []string) Command {
	return t.pipCommand("uninstall", append(extraArgs, packages...)...)
}

// ListCommand builds `uv pip list --format=json --python <py>`.
func (t *UvTool) ListCommand() Command {
	return t.pipCommand("list", "--format=json")
}

// ShowCommand builds `uv pip show --python <py> <pkg>`.
func (t *UvTool) ShowCommand(pkg string) Command {
	return t.pipCommand("show", pkg)
}

// VenvCommand builds `uv venv <path> [--python <ver>]`. uv downloads the
// requested interpreter version when it is not present locally.
func (t *UvTool) VenvCommand(path, pythonVersion string) Command {
	args := []string{"venv", path}
	if pythonVersion != "" {
		args = append(args, "--python", pythonVersion)
	}
	return Command{Program: t.executable, Args: args}
}

// ToolRunCommand builds `uv tool run <tool> [args…]`, the long form of uvx:
// the tool executes in an ephemeral environment.
func (t *UvTool) ToolRunCommand(command []string) Command {
	return Command{Program: t.executable, Args: append([]string{"tool", "run"}, command...)}
}
