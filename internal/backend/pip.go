// SPDX-License-Identifier: MPL-2.0

package backend

type (
	// PipTool drives pip through `<python> -m pip`, targeting whatever
	// environment the bound interpreter belongs to.
	PipTool struct {
		python string
	}
)

// NewPipTool creates a pip backend bound to the given interpreter path.
func NewPipTool(python string) *PipTool {
	return &PipTool{python: python}
}

// Name returns the backend name.
func (t *PipTool) Name() string { return "pip" }

// PythonExecutable returns the interpreter this backend targets.
func (t *PipTool) PythonExecutable() string { return t.python }

func (t *PipTool) command(args ...string) Command {
	return Command{Program: t.python, Args: append([]string{"-m", "pip"}, args...)}
}

// InstallCommand builds `<python> -m pip install …`.
func (t *PipTool) InstallCommand(packages []string, opts InstallOptions) Command {
	return t.command(append([]string{"install"}, installArgs(opts, packages)...)...)
}

// UninstallCommand builds `<python> -m pip uninstall -y …`.
func (t *PipTool) UninstallCommand(packages []string, extraArgs []string) Command {
	args := append([]string{"uninstall", "-y"}, extraArgs...)
	return t.command(append(args, packages...)...)
}

// ListCommand builds `<python> -m pip list --format=json`.
func (t *PipTool) ListCommand() Command {
	return t.command("list", "--format=json")
}

// ShowCommand builds `<python> -m pip show <pkg>`.
func (t *PipTool) ShowCommand(pkg string) Command {
	return t.command("show", pkg)
}

// VenvCommand builds `<python> -m venv <path>`. The stdlib venv module
// always uses the running interpreter's version; pythonVersion is ignored
// here (the uv backend honors it).
func (t *PipTool) VenvCommand(path, pythonVersion string) Command {
	_ = pythonVersion
	return Command{Program: t.python, Args: []string{"-m", "venv", path}}
}
