// SPDX-License-Identifier: MPL-2.0

package audit

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"pyforge-cli/internal/backend"
)

func newTestAuditor(lookPath func(string) (string, error)) *Auditor {
	return &Auditor{
		logger:   log.New(io.Discard),
		invoker:  backend.NewInvoker(log.New(io.Discard)),
		lookPath: lookPath,
	}
}

// fakeAuditScript writes a shell script that mimics pip-audit's exit behavior.
func fakeAuditScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake audit scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "pip-audit")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake audit script: %v", err)
	}
	return path
}

func TestCheck_ToolMissingAssumesVulnerable(t *testing.T) {
	a := newTestAuditor(func(string) (string, error) {
		return "", errors.New("executable not found")
	})

	report := a.Check(context.Background(), Options{})

	if !report.Found {
		t.Error("Found = false, want true for missing tool")
	}
	if !strings.Contains(report.Output, "not found") {
		t.Errorf("Output = %q, want note about absence", report.Output)
	}
}

func TestCheck_ExitCodeMapping(t *testing.T) {
	tests := []struct {
		name      string
		script    string
		wantFound bool
		wantIn    string
	}{
		{
			name:      "clean environment",
			script:    `echo "No known vulnerabilities found"; exit 0`,
			wantFound: false,
			wantIn:    "No known vulnerabilities",
		},
		{
			name:      "vulnerabilities found",
			script:    `echo "Found 2 known vulnerabilities"; exit 1`,
			wantFound: true,
			wantIn:    "Found 2 known vulnerabilities",
		},
		{
			name:      "tool error assumed vulnerable",
			script:    `echo "unable to reach index" >&2; exit 2`,
			wantFound: true,
			wantIn:    "exit code 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exe := fakeAuditScript(t, tt.script)
			a := newTestAuditor(func(string) (string, error) { return exe, nil })

			report := a.Check(context.Background(), Options{})

			if report.Found != tt.wantFound {
				t.Errorf("Found = %v, want %v", report.Found, tt.wantFound)
			}
			if !strings.Contains(report.Output, tt.wantIn) {
				t.Errorf("Output = %q, want it to contain %q", report.Output, tt.wantIn)
			}
		})
	}
}

func TestCheck_PlainInvocationPassesNoTargetFlags(t *testing.T) {
	exe := fakeAuditScript(t, `echo "args:[$@]"; exit 0`)
	a := newTestAuditor(func(string) (string, error) { return exe, nil })

	report := a.Check(context.Background(), Options{})

	if report.Found {
		t.Errorf("Found = true, want false: %s", report.Output)
	}
	// pip-audit has no interpreter-selection flag; a plain check must run
	// the bare executable.
	if !strings.Contains(report.Output, "args:[]") {
		t.Errorf("Output = %q, want an empty argument list", report.Output)
	}
}

func TestCheck_RequirementsFileTarget(t *testing.T) {
	exe := fakeAuditScript(t, `echo "$@"; exit 0`)
	a := newTestAuditor(func(string) (string, error) { return exe, nil })

	report := a.Check(context.Background(), Options{RequirementsFile: "reqs.txt"})

	if report.Found {
		t.Errorf("Found = true, want false: %s", report.Output)
	}
	if !strings.Contains(report.Output, "-r reqs.txt") {
		t.Errorf("Output = %q, requirements file flag not passed", report.Output)
	}
}
