// SPDX-License-Identifier: MPL-2.0

// Package manager composes an environment handle with a backend tool and
// exposes the install/uninstall/query operations the CLI is built on. A
// manager drives exactly one environment; callers that work with several
// environments construct one manager per environment instead of sharing a
// process-wide default.
package manager

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"pyforge-cli/internal/audit"
	"pyforge-cli/internal/backend"
	"pyforge-cli/internal/issue"
	"pyforge-cli/internal/pyenv"
	"pyforge-cli/internal/reconcile"
	"pyforge-cli/pkg/pyreq"
)

type (
	// Options carries the per-call install knobs. The zero value is a plain
	// captured install.
	Options struct {
		// IndexURL is a custom package index (--index-url).
		IndexURL string
		// ExtraArgs are appended to the invocation verbatim.
		ExtraArgs []string
		// Upgrade adds --upgrade.
		Upgrade bool
		// ForceReinstall adds --force-reinstall.
		ForceReinstall bool
		// NoDeps adds --no-deps.
		NoDeps bool
		// DryRun builds and echoes the command line without running it.
		DryRun bool
		// Verbose streams subprocess output instead of capturing it.
		Verbose bool
	}

	// EnsureOutcome is the result of one reconcile-then-install pass.
	EnsureOutcome struct {
		// Report is the reconciliation outcome that drove the install.
		Report reconcile.Report
		// Install is the batch install result, nil when every requirement
		// was already met.
		Install *backend.Result
	}

	// Dependencies are the manager's injectable collaborators. Nil fields
	// fall back to production implementations built from the environment
	// and tool.
	Dependencies struct {
		Invoker   *backend.Invoker
		Inventory reconcile.InventoryProvider
		Auditor   *audit.Auditor
	}

	// PackageManager runs package operations against one environment through
	// one backend tool. At most one outstanding invocation per manager is
	// expected; it holds no locks of its own.
	PackageManager struct {
		env        pyenv.Environment
		tool       backend.Tool
		logger     *log.Logger
		invoker    *backend.Invoker
		inventory  reconcile.InventoryProvider
		reconciler *reconcile.Reconciler
		auditor    *audit.Auditor
	}
)

// New creates a PackageManager for the given environment and backend. deps
// may be nil; nil fields get production defaults.
func New(env pyenv.Environment, tool backend.Tool, logger *log.Logger, deps *Dependencies) *PackageManager {
	if deps == nil {
		deps = &Dependencies{}
	}

	invoker := deps.Invoker
	if invoker == nil {
		invoker = backend.NewInvoker(logger)
	}

	inventory := deps.Inventory
	if inventory == nil {
		inventory = pyenv.InventorySource{Tool: tool, Invoker: invoker}
	}

	auditor := deps.Auditor
	if auditor == nil {
		auditor = audit.New(logger, invoker)
	}

	return &PackageManager{
		env:        env,
		tool:       tool,
		logger:     logger,
		invoker:    invoker,
		inventory:  inventory,
		reconciler: reconcile.New(logger),
		auditor:    auditor,
	}
}

// Environment returns the environment handle this manager drives.
func (pm *PackageManager) Environment() pyenv.Environment { return pm.env }

// Backend returns the backend tool name ("pip" or "uv").
func (pm *PackageManager) Backend() string { return pm.tool.Name() }

// Success and failure of install/uninstall operations are carried in the
// returned Result; an invocation failure is not an error. Errors are
// reserved for structural failures such as an unreadable requirements file
// or a failing inventory query.

// Install installs a single package specifier.
func (pm *PackageManager) Install(ctx context.Context, pkg string, opts Options) *backend.Result {
	return pm.InstallMultiple(ctx, []string{pkg}, opts)
}

// InstallMultiple installs a batch of package specifiers in one invocation.
func (pm *PackageManager) InstallMultiple(ctx context.Context, packages []string, opts Options) *backend.Result {
	if len(packages) == 0 {
		return nothingToDo()
	}
	return pm.install(ctx, packages, opts, backend.InstallOptions{})
}

// InstallVersion installs an exact pinned version of a package.
func (pm *PackageManager) InstallVersion(ctx context.Context, pkg, version string, opts Options) *backend.Result {
	return pm.InstallMultiple(ctx, []string{pkg + "==" + version}, opts)
}

// InstallEditable installs a local project in editable mode.
func (pm *PackageManager) InstallEditable(ctx context.Context, path string, opts Options) *backend.Result {
	return pm.install(ctx, nil, opts, backend.InstallOptions{EditablePath: path})
}

// InstallRequirementsFile installs every entry of a requirements file,
// delegating the file's interpretation to the backend tool.
func (pm *PackageManager) InstallRequirementsFile(ctx context.Context, path string, opts Options) *backend.Result {
	return pm.install(ctx, nil, opts, backend.InstallOptions{RequirementsFile: path})
}

func (pm *PackageManager) install(ctx context.Context, packages []string, opts Options, base backend.InstallOptions) *backend.Result {
	base.IndexURL = opts.IndexURL
	base.Upgrade = opts.Upgrade
	base.ForceReinstall = opts.ForceReinstall
	base.NoDeps = opts.NoDeps
	base.ExtraArgs = opts.ExtraArgs

	command := pm.tool.InstallCommand(packages, base)
	pm.logger.Debug("install", "backend", pm.tool.Name(), "command", command.String())
	return pm.invoker.Run(ctx, command, outputMode(opts), opts.DryRun)
}

// Uninstall removes a single package.
func (pm *PackageManager) Uninstall(ctx context.Context, pkg string, opts Options) *backend.Result {
	return pm.UninstallMultiple(ctx, []string{pkg}, opts)
}

// UninstallMultiple removes a batch of packages in one invocation.
func (pm *PackageManager) UninstallMultiple(ctx context.Context, packages []string, opts Options) *backend.Result {
	if len(packages) == 0 {
		return nothingToDo()
	}
	command := pm.tool.UninstallCommand(packages, opts.ExtraArgs)
	pm.logger.Debug("uninstall", "backend", pm.tool.Name(), "command", command.String())
	return pm.invoker.Run(ctx, command, outputMode(opts), opts.DryRun)
}

// EnsurePackages reconciles the requirement source against the environment
// and installs the unmet subset in one batch. Already-met requirements are
// never reinstalled; the batch always upgrades so specifier mismatches move
// to a satisfying version, but --force-reinstall is only sent when the
// caller asks for it explicitly.
func (pm *PackageManager) EnsurePackages(ctx context.Context, source pyreq.Source, opts Options) (EnsureOutcome, error) {
	report, err := pm.reconciler.Reconcile(ctx, source, pm.inventory)
	if err != nil {
		return EnsureOutcome{}, err
	}
	if report.Satisfied() {
		pm.logger.Debug("all requirements met", "checked", report.Checked)
		return EnsureOutcome{Report: report}, nil
	}

	opts.Upgrade = true
	result := pm.InstallMultiple(ctx, report.Unmet, opts)
	return EnsureOutcome{Report: report, Install: result}, nil
}

// EnsureRequirementsFile reads a requirements file and ensures its entries,
// installing only the unmet subset. Unlike InstallRequirementsFile this
// parses the file locally, so option lines and includes are not supported.
func (pm *PackageManager) EnsureRequirementsFile(ctx context.Context, path string, opts Options) (EnsureOutcome, error) {
	entries, err := readRequirementsFile(path)
	if err != nil {
		return EnsureOutcome{}, err
	}
	return pm.EnsurePackages(ctx, pyreq.FromList(entries), opts)
}

// InstallMissingOnly installs the packages that are absent from the
// environment, by presence check alone. Version specifiers on present
// packages are not evaluated.
func (pm *PackageManager) InstallMissingOnly(ctx context.Context, packages []string, opts Options) (*backend.Result, error) {
	inv, err := pm.inventory.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	missing := make([]string, 0, len(packages))
	for _, pkg := range packages {
		req, err := pyreq.Parse(pkg)
		if err != nil {
			pm.logger.Warn("skipping malformed requirement", "input", pkg, "err", err)
			continue
		}
		if !inv.Has(req.Name) {
			missing = append(missing, pkg)
		}
	}

	if len(missing) == 0 {
		pm.logger.Debug("all packages present", "checked", len(packages))
		return nothingToDo(), nil
	}
	return pm.InstallMultiple(ctx, missing, opts), nil
}

// IsInstalled reports whether a package is present, by canonical name.
func (pm *PackageManager) IsInstalled(ctx context.Context, pkg string) (bool, error) {
	inv, err := pm.inventory.Inventory(ctx)
	if err != nil {
		return false, err
	}
	return inv.Has(pkg), nil
}

// InstalledVersion returns the installed version of a package. The boolean
// is false when the package is absent; absence is not an error.
func (pm *PackageManager) InstalledVersion(ctx context.Context, pkg string) (string, bool, error) {
	inv, err := pm.inventory.Inventory(ctx)
	if err != nil {
		return "", false, err
	}
	version, ok := inv.Version(pkg)
	return version, ok, nil
}

// IsVersionCompatible reports whether the installed version of a package
// satisfies a specifier. An absent package is incompatible, not an error.
func (pm *PackageManager) IsVersionCompatible(ctx context.Context, pkg, specifier string) (bool, error) {
	req, err := pyreq.Parse(pkg + specifier)
	if err != nil {
		return false, err
	}

	version, ok, err := pm.InstalledVersion(ctx, pkg)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if !req.HasSpecifier() {
		return true, nil
	}

	satisfied, err := req.Satisfied(version)
	if err != nil {
		pm.logger.Warn("could not compare installed version", "package", pkg, "version", version, "err", err)
		return false, nil
	}
	return satisfied, nil
}

// PackageInfo runs the backend's show command and returns its result; the
// Output field holds the package metadata text.
func (pm *PackageManager) PackageInfo(ctx context.Context, pkg string) *backend.Result {
	command := pm.tool.ShowCommand(pkg)
	return pm.invoker.Run(ctx, command, backend.OutputCapture, false)
}

// RunTool executes a command-line tool in an ephemeral environment through
// the backend (`uv tool run`, the long form of uvx). Backends without
// ephemeral tool support return an error.
func (pm *PackageManager) RunTool(ctx context.Context, command []string, opts Options) (*backend.Result, error) {
	runner, ok := pm.tool.(backend.ToolRunner)
	if !ok {
		return nil, fmt.Errorf("the %s backend cannot run ephemeral tools; use the uv backend", pm.tool.Name())
	}
	if len(command) == 0 {
		return nil, fmt.Errorf("no tool command given")
	}

	cmd := runner.ToolRunCommand(command)
	pm.logger.Debug("tool run", "backend", pm.tool.Name(), "command", cmd.String())
	return pm.invoker.Run(ctx, cmd, outputMode(opts), opts.DryRun), nil
}

// CheckVulnerabilities audits with pip-audit. The tool inspects the
// environment it is installed in, or a requirements file when the options
// name one; it cannot be pointed at an arbitrary interpreter.
func (pm *PackageManager) CheckVulnerabilities(ctx context.Context, opts audit.Options) audit.Report {
	return pm.auditor.Check(ctx, opts)
}

// Success reports whether the pass left every requirement met: either the
// environment already satisfied them, or the batch install succeeded.
func (o EnsureOutcome) Success() bool {
	return o.Install == nil || o.Install.Success()
}

func outputMode(opts Options) backend.OutputMode {
	if opts.Verbose {
		return backend.OutputStream
	}
	return backend.OutputCapture
}

func nothingToDo() *backend.Result {
	return &backend.Result{Output: "nothing to do"}
}

// readRequirementsFile extracts the requirement lines of a pip requirements
// file, dropping blanks, comments, and option lines.
func readRequirementsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("read requirements file").
			WithResource(path).
			WithSuggestion("Check the file path").
			Wrap(err).
			Build()
	}

	var entries []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		entries = append(entries, line)
	}
	return entries, nil
}
