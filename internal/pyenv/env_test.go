// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestVenvPython(t *testing.T) {
	got := VenvPython("/opt/venvs/worker")
	if runtime.GOOS == "windows" {
		want := filepath.Join("/opt/venvs/worker", "Scripts", "python.exe")
		if got != want {
			t.Errorf("VenvPython() = %q, want %q", got, want)
		}
		return
	}
	if got != "/opt/venvs/worker/bin/python" {
		t.Errorf("VenvPython() = %q, want %q", got, "/opt/venvs/worker/bin/python")
	}
}

func TestFromVenv(t *testing.T) {
	t.Run("missing interpreter", func(t *testing.T) {
		_, err := FromVenv(filepath.Join(t.TempDir(), "no-such-venv"))
		if err == nil {
			t.Fatal("FromVenv() error = nil for missing environment")
		}
	})

	t.Run("resolves existing interpreter", func(t *testing.T) {
		root := t.TempDir()
		python := VenvPython(root)
		if err := os.MkdirAll(filepath.Dir(python), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(python, []byte("#!/bin/true\n"), 0o755); err != nil {
			t.Fatalf("write fake interpreter: %v", err)
		}

		env, err := FromVenv(root)
		if err != nil {
			t.Fatalf("FromVenv() error = %v", err)
		}
		if env.Python != python {
			t.Errorf("Python = %q, want %q", env.Python, python)
		}
		if env.Root != root {
			t.Errorf("Root = %q, want %q", env.Root, root)
		}
	})
}

func TestFromInterpreter(t *testing.T) {
	env := FromInterpreter("/usr/bin/python3")
	if env.Python != "/usr/bin/python3" || env.Root != "" {
		t.Errorf("FromInterpreter() = %+v", env)
	}
}
