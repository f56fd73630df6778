// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pyforge-cli/internal/config"
	"pyforge-cli/internal/pyenv"
	"pyforge-cli/pkg/manager"
	"pyforge-cli/pkg/pyreq"
)

// newForgeCommand creates the `pyforge forge` command: forge a new virtual
// environment and optionally equip it with initial packages.
func newForgeCommand(app *App) *cobra.Command {
	var (
		pythonVersion string
		dir           string
		packages      []string
	)

	forgeCmd := &cobra.Command{
		Use:   "forge",
		Short: "Forge a new virtual environment",
		Long: `Forge a new virtual environment at the given directory.

With the uv backend the Python version is resolved by uv itself; the pip
backend always uses the interpreter found on PATH.`,
		Example: `  pyforge forge -d ./venv
  pyforge forge -p 3.12 -d ./venv -b uv
  pyforge forge -d ./venv -k requests -k "numpy>=1.20"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}

			bootstrap, err := bootstrapEnvironment(cfg)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			tool, err := app.buildTool(cfg, bootstrap)
			if err != nil {
				return err
			}

			env, err := pyenv.CreateVenv(cmd.Context(), app.invoker(), tool, dir, pythonVersion)
			if err != nil {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Forge failed: ")+formatErrorForDisplay(err, app.verbose))
				return &ExitError{Code: 1, Err: err}
			}
			fmt.Fprintln(app.stdout, SuccessStyle.Render("Forged environment at ")+PkgStyle.Render(env.Root))

			if len(packages) == 0 {
				return nil
			}

			envTool, err := app.buildTool(cfg, env)
			if err != nil {
				return err
			}
			pm := manager.New(env, envTool, app.Logger, app.managerDeps)

			opts, err := app.installOptions(cfg, &installFlags{})
			if err != nil {
				return err
			}
			outcome, err := pm.EnsurePackages(cmd.Context(), pyreq.FromList(packages), opts)
			if err != nil {
				return err
			}
			return reportEnsure(app, outcome)
		},
	}

	forgeCmd.Flags().StringVarP(&pythonVersion, "python-version", "p", "", "Python version for the new environment (uv backend only)")
	forgeCmd.Flags().StringVarP(&dir, "dir", "d", "", "directory for the new environment (required)")
	forgeCmd.Flags().StringArrayVarP(&packages, "pkg", "k", nil, "initial package to equip (repeatable)")
	_ = forgeCmd.MarkFlagRequired("dir")

	return forgeCmd
}

// bootstrapEnvironment picks the interpreter used to create a venv. The pip
// backend creates venvs through `python -m venv`, so it needs an interpreter
// on PATH; uv brings its own.
func bootstrapEnvironment(cfg *config.Config) (pyenv.Environment, error) {
	if cfg.Backend == config.BackendUv {
		return pyenv.Environment{}, nil
	}
	return pyenv.Current()
}
