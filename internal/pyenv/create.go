// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"pyforge-cli/internal/backend"
	"pyforge-cli/internal/issue"
)

// CreateVenv creates a virtual environment at path using the given backend
// tool, then returns a handle on it. Unlike install failures, a bootstrap
// failure here is an error: there is no sensible fallback when the requested
// environment cannot exist.
//
// pythonVersion requests a specific interpreter version; only the uv backend
// honors it (stdlib venv always uses the invoking interpreter's version).
func CreateVenv(ctx context.Context, invoker *backend.Invoker, tool backend.Tool, path, pythonVersion string) (Environment, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Environment{}, issue.WrapWithOperation(err, "resolve environment path")
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return Environment{}, issue.NewErrorContext().
			WithOperation("create virtual environment").
			WithResource(abs).
			Wrap(err).
			Build()
	}

	result := invoker.Run(ctx, tool.VenvCommand(abs, pythonVersion), backend.OutputCapture, false)
	if !result.Success() {
		return Environment{}, issue.NewErrorContext().
			WithOperation("create virtual environment").
			WithResource(abs).
			WithSuggestion("Check that the base interpreter supports the venv module").
			WithSuggestion("Verify the requested Python version is available").
			Wrap(errors.New(result.Diagnostic())).
			Build()
	}

	env, err := FromVenv(abs)
	if err != nil {
		return Environment{}, issue.NewErrorContext().
			WithOperation("create virtual environment").
			WithResource(abs).
			Wrap(err).
			Build()
	}

	return env, nil
}
