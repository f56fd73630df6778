// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"pyforge-cli/internal/backend"
	"pyforge-cli/internal/config"
	"pyforge-cli/internal/issue"
	"pyforge-cli/internal/pyenv"
	"pyforge-cli/pkg/manager"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer — all Cobra command handlers receive an App
	// reference and build managers through it, so no process-wide default
	// manager exists.
	App struct {
		Config config.Provider
		Logger *log.Logger

		stdout io.Writer
		stderr io.Writer

		// managerDeps is forwarded to every manager the App builds. Tests
		// inject fake inventories and invokers through it.
		managerDeps *manager.Dependencies

		// Persistent flag state, bound by newRootCommand.
		verbose     bool
		cfgFile     string
		backendFlag string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp. Tests can
	// supply fakes to isolate specific behavior.
	Dependencies struct {
		Config      config.Provider
		Logger      *log.Logger
		ManagerDeps *manager.Dependencies
		Stdout      io.Writer
		Stderr      io.Writer
	}
)

// NewApp builds the CLI composition root. deps may be nil.
func NewApp(deps *Dependencies) *App {
	if deps == nil {
		deps = &Dependencies{}
	}

	app := &App{
		Config:      deps.Config,
		Logger:      deps.Logger,
		managerDeps: deps.ManagerDeps,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}

	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.Logger == nil {
		app.Logger = log.NewWithOptions(app.stderr, log.Options{Prefix: "pyforge"})
	}

	return app
}

// loadConfig loads configuration honoring the --config and --backend flags.
func (app *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: app.cfgFile})
	if err != nil {
		return nil, err
	}

	if app.backendFlag != "" {
		b := config.Backend(app.backendFlag)
		if !b.IsValid() {
			return nil, &config.InvalidBackendError{Value: b}
		}
		cfg.Backend = b
	}
	if app.verbose {
		cfg.UI.Verbose = true
	}

	return cfg, nil
}

// resolveEnvironment picks the target environment: the --env flag first,
// then the configured default, then the interpreter on PATH.
func (app *App) resolveEnvironment(cfg *config.Config, envFlag string) (pyenv.Environment, error) {
	switch {
	case envFlag != "":
		return pyenv.FromVenv(envFlag)
	case cfg.DefaultEnvironment != "":
		return pyenv.FromVenv(string(cfg.DefaultEnvironment))
	default:
		return pyenv.Current()
	}
}

// buildTool constructs the configured backend bound to an interpreter.
func (app *App) buildTool(cfg *config.Config, env pyenv.Environment) (backend.Tool, error) {
	switch cfg.Backend {
	case config.BackendUv:
		return backend.NewUvTool(env.Python)
	case config.BackendPip:
		return backend.NewPipTool(env.Python), nil
	default:
		return nil, &config.InvalidBackendError{Value: cfg.Backend}
	}
}

// buildManager resolves the environment and returns a manager driving it.
func (app *App) buildManager(ctx context.Context, envFlag string) (*manager.PackageManager, *config.Config, error) {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}

	env, err := app.resolveEnvironment(cfg, envFlag)
	if err != nil {
		return nil, nil, err
	}

	tool, err := app.buildTool(cfg, env)
	if err != nil {
		return nil, nil, err
	}

	return manager.New(env, tool, app.Logger, app.managerDeps), cfg, nil
}

// invoker returns the injected subprocess invoker when tests supplied one,
// or a production invoker otherwise.
func (app *App) invoker() *backend.Invoker {
	if app.managerDeps != nil && app.managerDeps.Invoker != nil {
		return app.managerDeps.Invoker
	}
	return backend.NewInvoker(app.Logger)
}

// installOptions merges config install defaults with per-command flags.
func (app *App) installOptions(cfg *config.Config, flags *installFlags) (manager.Options, error) {
	extraArgs, err := backend.SplitExtraArgs(cfg.Install.ExtraArgs)
	if err != nil {
		return manager.Options{}, fmt.Errorf("invalid install.extra_args in config: %w", err)
	}
	if flags.extraArgs != "" {
		flagArgs, err := backend.SplitExtraArgs(flags.extraArgs)
		if err != nil {
			return manager.Options{}, fmt.Errorf("invalid --extra-args value: %w", err)
		}
		extraArgs = append(extraArgs, flagArgs...)
	}

	indexURL := cfg.Install.IndexURL
	if flags.indexURL != "" {
		indexURL = flags.indexURL
	}

	return manager.Options{
		IndexURL:       indexURL,
		ExtraArgs:      extraArgs,
		Upgrade:        flags.upgrade,
		ForceReinstall: flags.forceReinstall,
		NoDeps:         flags.noDeps,
		DryRun:         flags.dryRun,
		Verbose:        cfg.UI.Verbose,
	}, nil
}

// installFlags is the flag set shared by the install-family commands.
type installFlags struct {
	env            string
	indexURL       string
	extraArgs      string
	upgrade        bool
	forceReinstall bool
	noDeps         bool
	dryRun         bool
}

func (f *installFlags) register(cmd *cobra.Command, withInstallKnobs bool) {
	cmd.Flags().StringVarP(&f.env, "env", "e", "", "target virtual environment path")
	if withInstallKnobs {
		cmd.Flags().StringVar(&f.indexURL, "index-url", "", "custom package index URL")
		cmd.Flags().StringVar(&f.extraArgs, "extra-args", "", "extra arguments passed to the backend (shell-quoted)")
		cmd.Flags().BoolVar(&f.upgrade, "upgrade", false, "upgrade packages to the latest satisfying version")
		cmd.Flags().BoolVar(&f.forceReinstall, "force-reinstall", false, "reinstall even when already satisfied")
		cmd.Flags().BoolVar(&f.noDeps, "no-deps", false, "do not install dependencies")
		cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the command without executing it")
	}
}

// formatErrorForDisplay formats an error for user display. If the error is
// an ActionableError, it uses the Format method. In verbose mode, shows the
// full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
