// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newBanishCommand creates the `pyforge banish` command: uninstall packages
// from an environment.
func newBanishCommand(app *App) *cobra.Command {
	var flags installFlags

	banishCmd := &cobra.Command{
		Use:   "banish <package>...",
		Short: "Banish packages from an environment",
		Example: `  pyforge banish requests
  pyforge banish requests numpy -e ./venv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, cfg, err := app.buildManager(cmd.Context(), flags.env)
			if err != nil {
				return err
			}

			opts, err := app.installOptions(cfg, &flags)
			if err != nil {
				return err
			}
			result := pm.UninstallMultiple(cmd.Context(), args, opts)

			if result.DryRun {
				fmt.Fprintln(app.stdout, result.Output)
				return nil
			}
			if !result.Success() {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Banish failed:"))
				fmt.Fprintln(app.stderr, result.Diagnostic())
				return &ExitError{Code: 1}
			}

			fmt.Fprintln(app.stdout, SuccessStyle.Render("Banished ")+PkgStyle.Render(strings.Join(args, " ")))
			return nil
		},
	}

	flags.register(banishCmd, false)
	banishCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the command without executing it")

	return banishCmd
}
