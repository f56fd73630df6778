// SPDX-License-Identifier: MPL-2.0

package manager

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"pyforge-cli/internal/backend"
	"pyforge-cli/internal/pyenv"
	"pyforge-cli/pkg/pyreq"
)

type fakeInventory struct {
	packages pyenv.Inventory
	err      error
	queries  int
}

func (f *fakeInventory) Inventory(context.Context) (pyenv.Inventory, error) {
	f.queries++
	return f.packages, f.err
}

func newTestManager(inv *fakeInventory) *PackageManager {
	logger := log.New(io.Discard)
	return New(
		pyenv.FromInterpreter("/venv/bin/python"),
		backend.NewPipTool("/venv/bin/python"),
		logger,
		&Dependencies{Inventory: inv},
	)
}

func TestEnsurePackages_AllMet(t *testing.T) {
	inv := &fakeInventory{packages: pyenv.Inventory{"requests": "2.31.0"}}
	pm := newTestManager(inv)

	outcome, err := pm.EnsurePackages(context.Background(), pyreq.FromList([]string{"requests>=2.0"}), Options{})
	if err != nil {
		t.Fatalf("EnsurePackages: %v", err)
	}

	if !outcome.Success() {
		t.Error("Success() = false, want true")
	}
	if outcome.Install != nil {
		t.Errorf("Install = %+v, want nil when everything is met", outcome.Install)
	}
	if inv.queries != 1 {
		t.Errorf("inventory queried %d times, want 1", inv.queries)
	}
}

func TestEnsurePackages_InstallsUnmetBatch(t *testing.T) {
	inv := &fakeInventory{packages: pyenv.Inventory{"requests": "1.0"}}
	pm := newTestManager(inv)

	source := pyreq.FromList([]string{"requests>=2.0", "numpy>=1.20"})
	outcome, err := pm.EnsurePackages(context.Background(), source, Options{DryRun: true})
	if err != nil {
		t.Fatalf("EnsurePackages: %v", err)
	}

	if outcome.Install == nil {
		t.Fatal("Install = nil, want a dry-run result")
	}
	if !outcome.Install.DryRun {
		t.Error("DryRun = false, want true")
	}

	cmdline := outcome.Install.CommandLine
	if !strings.Contains(cmdline, "install --upgrade requests>=2.0 numpy>=1.20") {
		t.Errorf("CommandLine = %q, want one upgrade batch in encounter order", cmdline)
	}
	if strings.Contains(cmdline, "--force-reinstall") {
		t.Errorf("CommandLine = %q, force-reinstall must never be implicit", cmdline)
	}
}

func TestEnsurePackages_InventoryErrorPropagates(t *testing.T) {
	inv := &fakeInventory{err: errors.New("listing failed")}
	pm := newTestManager(inv)

	_, err := pm.EnsurePackages(context.Background(), pyreq.FromString("requests"), Options{})
	if err == nil {
		t.Fatal("EnsurePackages error = nil, want inventory failure")
	}
}

func TestEnsureRequirementsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requirements.txt")
	content := strings.Join([]string{
		"# pinned for reproducibility",
		"requests>=2.0",
		"",
		"--index-url https://example.invalid/simple",
		"numpy>=1.20  # numeric stack",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write requirements file: %v", err)
	}

	inv := &fakeInventory{packages: pyenv.Inventory{}}
	pm := newTestManager(inv)

	outcome, err := pm.EnsureRequirementsFile(context.Background(), path, Options{DryRun: true})
	if err != nil {
		t.Fatalf("EnsureRequirementsFile: %v", err)
	}

	want := []string{"requests>=2.0", "numpy>=1.20"}
	if len(outcome.Report.Unmet) != len(want) {
		t.Fatalf("Unmet = %v, want %v", outcome.Report.Unmet, want)
	}
	for i, w := range want {
		if outcome.Report.Unmet[i] != w {
			t.Errorf("Unmet[%d] = %q, want %q", i, outcome.Report.Unmet[i], w)
		}
	}
}

func TestEnsureRequirementsFile_MissingFile(t *testing.T) {
	pm := newTestManager(&fakeInventory{})

	_, err := pm.EnsureRequirementsFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), Options{})
	if err == nil {
		t.Fatal("error = nil, want read failure")
	}
}

func TestInstallMissingOnly(t *testing.T) {
	inv := &fakeInventory{packages: pyenv.Inventory{"requests": "1.0"}}
	pm := newTestManager(inv)

	// requests is present with an old version; presence alone keeps it out
	// of the install batch.
	result, err := pm.InstallMissingOnly(context.Background(), []string{"requests>=2.0", "numpy"}, Options{DryRun: true})
	if err != nil {
		t.Fatalf("InstallMissingOnly: %v", err)
	}

	if !strings.Contains(result.CommandLine, "install numpy") {
		t.Errorf("CommandLine = %q, want install of numpy only", result.CommandLine)
	}
	if strings.Contains(result.CommandLine, "requests") {
		t.Errorf("CommandLine = %q, present package must not be reinstalled", result.CommandLine)
	}
}

func TestInstallMissingOnly_AllPresent(t *testing.T) {
	inv := &fakeInventory{packages: pyenv.Inventory{"requests": "1.0"}}
	pm := newTestManager(inv)

	result, err := pm.InstallMissingOnly(context.Background(), []string{"requests"}, Options{})
	if err != nil {
		t.Fatalf("InstallMissingOnly: %v", err)
	}
	if !result.Success() {
		t.Errorf("Success() = false, want a no-op success")
	}
	if result.CommandLine != "" {
		t.Errorf("CommandLine = %q, want no invocation", result.CommandLine)
	}
}

func TestInstallVariants_CommandLines(t *testing.T) {
	pm := newTestManager(&fakeInventory{})

	tests := []struct {
		name string
		run  func(ctx context.Context) *backend.Result
		want string
	}{
		{
			name: "exact version pin",
			run: func(ctx context.Context) *backend.Result {
				return pm.InstallVersion(ctx, "numpy", "1.26.0", Options{DryRun: true})
			},
			want: "install numpy==1.26.0",
		},
		{
			name: "editable project",
			run: func(ctx context.Context) *backend.Result {
				return pm.InstallEditable(ctx, "./proj", Options{DryRun: true})
			},
			want: "install -e ./proj",
		},
		{
			name: "requirements file",
			run: func(ctx context.Context) *backend.Result {
				return pm.InstallRequirementsFile(ctx, "reqs.txt", Options{DryRun: true})
			},
			want: "install -r reqs.txt",
		},
		{
			name: "custom index",
			run: func(ctx context.Context) *backend.Result {
				return pm.Install(ctx, "requests", Options{DryRun: true, IndexURL: "https://example.invalid/simple"})
			},
			want: "install --index-url https://example.invalid/simple requests",
		},
		{
			name: "uninstall batch",
			run: func(ctx context.Context) *backend.Result {
				return pm.UninstallMultiple(ctx, []string{"requests", "numpy"}, Options{DryRun: true})
			},
			want: "uninstall -y requests numpy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.run(context.Background())
			if !strings.Contains(result.CommandLine, tt.want) {
				t.Errorf("CommandLine = %q, want it to contain %q", result.CommandLine, tt.want)
			}
			if !result.DryRun {
				t.Error("DryRun = false, want true")
			}
		})
	}
}

func TestInstallMultiple_EmptyBatch(t *testing.T) {
	pm := newTestManager(&fakeInventory{})

	result := pm.InstallMultiple(context.Background(), nil, Options{})
	if !result.Success() {
		t.Error("Success() = false, want no-op success for an empty batch")
	}
}

func TestQueries(t *testing.T) {
	inv := &fakeInventory{packages: pyenv.Inventory{"requests": "2.31.0", "pyyaml": "6.0"}}
	pm := newTestManager(inv)
	ctx := context.Background()

	if ok, err := pm.IsInstalled(ctx, "Requests"); err != nil || !ok {
		t.Errorf("IsInstalled(Requests) = %v, %v, want true, nil", ok, err)
	}
	if ok, err := pm.IsInstalled(ctx, "numpy"); err != nil || ok {
		t.Errorf("IsInstalled(numpy) = %v, %v, want false, nil", ok, err)
	}

	version, ok, err := pm.InstalledVersion(ctx, "PyYAML")
	if err != nil || !ok || version != "6.0" {
		t.Errorf("InstalledVersion(PyYAML) = %q, %v, %v, want 6.0, true, nil", version, ok, err)
	}
}

// ephemeralTool decorates a Tool with uv-style ephemeral tool execution.
type ephemeralTool struct {
	backend.Tool
}

func (e ephemeralTool) ToolRunCommand(command []string) backend.Command {
	return backend.Command{Program: "uv", Args: append([]string{"tool", "run"}, command...)}
}

func TestRunTool(t *testing.T) {
	logger := log.New(io.Discard)
	pm := New(
		pyenv.FromInterpreter("/venv/bin/python"),
		ephemeralTool{Tool: backend.NewPipTool("/venv/bin/python")},
		logger,
		&Dependencies{Inventory: &fakeInventory{}},
	)

	result, err := pm.RunTool(context.Background(), []string{"ruff", "check", "."}, Options{DryRun: true})
	if err != nil {
		t.Fatalf("RunTool: %v", err)
	}
	if result.CommandLine != "uv tool run ruff check ." {
		t.Errorf("CommandLine = %q, want the ephemeral tool invocation", result.CommandLine)
	}

	if _, err := pm.RunTool(context.Background(), nil, Options{}); err == nil {
		t.Error("RunTool with no command = nil error, want failure")
	}
}

func TestRunTool_UnsupportedBackend(t *testing.T) {
	pm := newTestManager(&fakeInventory{})

	_, err := pm.RunTool(context.Background(), []string{"ruff"}, Options{})
	if err == nil {
		t.Fatal("RunTool on pip backend = nil error, want unsupported-backend failure")
	}
	if !strings.Contains(err.Error(), "uv") {
		t.Errorf("error = %v, want a pointer at the uv backend", err)
	}
}

func TestIsVersionCompatible(t *testing.T) {
	inv := &fakeInventory{packages: pyenv.Inventory{"requests": "2.31.0"}}
	pm := newTestManager(inv)

	tests := []struct {
		name      string
		pkg       string
		specifier string
		want      bool
	}{
		{name: "satisfied range", pkg: "requests", specifier: ">=2.0,<3.0", want: true},
		{name: "unsatisfied minimum", pkg: "requests", specifier: ">=3.0", want: false},
		{name: "no specifier means presence", pkg: "requests", specifier: "", want: true},
		{name: "absent package", pkg: "numpy", specifier: ">=1.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pm.IsVersionCompatible(context.Background(), tt.pkg, tt.specifier)
			if err != nil {
				t.Fatalf("IsVersionCompatible: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsVersionCompatible(%s, %q) = %v, want %v", tt.pkg, tt.specifier, got, tt.want)
			}
		})
	}
}
