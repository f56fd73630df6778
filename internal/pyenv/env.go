// SPDX-License-Identifier: MPL-2.0

// Package pyenv models target interpreter environments: locating their
// interpreter, creating virtual environments, and snapshotting their
// installed-package metadata.
package pyenv

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"pyforge-cli/internal/issue"
)

type (
	// Environment is an explicit handle on one interpreter environment.
	// Callers pass it to managers instead of relying on any process-wide
	// default, so several environments can be driven from one process.
	Environment struct {
		// Python is the path to the environment's interpreter.
		Python string
		// Root is the virtual-environment root directory, empty when the
		// handle targets a bare interpreter.
		Root string
	}
)

// VenvPython returns the interpreter path a virtual environment at root
// would have, following the platform venv layout.
func VenvPython(root string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(root, "Scripts", "python.exe")
	}
	return filepath.Join(root, "bin", "python")
}

// Current resolves the environment of the interpreter found on PATH.
func Current() (Environment, error) {
	for _, candidate := range []string{"python3", "python"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return Environment{Python: path}, nil
		}
	}
	return Environment{}, issue.NewErrorContext().
		WithOperation("locate interpreter").
		WithResource("python3").
		WithSuggestion("Install Python or use an explicit environment path").
		Build()
}

// FromInterpreter makes an Environment for an explicit interpreter path.
func FromInterpreter(python string) Environment {
	return Environment{Python: python}
}

// FromVenv resolves the interpreter inside an existing virtual environment.
// It fails when the environment has no interpreter at the expected location.
func FromVenv(root string) (Environment, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Environment{}, issue.WrapWithOperation(err, "resolve environment path")
	}

	python := VenvPython(abs)
	if _, err := os.Stat(python); err != nil {
		return Environment{}, issue.NewErrorContext().
			WithOperation("locate interpreter").
			WithResource(python).
			WithSuggestion("Check the environment path").
			WithSuggestion("Create the environment first with 'pyforge forge'").
			Wrap(err).
			Build()
	}

	return Environment{Python: python, Root: abs}, nil
}
