// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pyforge-cli/pkg/manager"
	"pyforge-cli/pkg/pyreq"
)

// newEquipCommand creates the `pyforge equip` command: ensure the given
// requirements are met, installing only the unmet subset as one batch.
func newEquipCommand(app *App) *cobra.Command {
	var (
		flags            installFlags
		requirementsFile string
		missingOnly      bool
	)

	equipCmd := &cobra.Command{
		Use:   "equip <requirement>...",
		Short: "Equip an environment with packages",
		Long: `Equip an environment with packages.

Each requirement is checked against the installed state first; packages
that already satisfy their specifier are left alone, and the rest are
installed in a single batch.`,
		Example: `  pyforge equip requests
  pyforge equip "requests>=2.0" "numpy>=1.20" -e ./venv
  pyforge equip -r requirements.txt
  pyforge equip "rich<14" --dry-run`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && requirementsFile == "" {
				return fmt.Errorf("nothing to equip: pass requirements or -r <file>")
			}

			pm, cfg, err := app.buildManager(cmd.Context(), flags.env)
			if err != nil {
				return err
			}
			opts, err := app.installOptions(cfg, &flags)
			if err != nil {
				return err
			}

			if missingOnly {
				result, err := pm.InstallMissingOnly(cmd.Context(), args, opts)
				if err != nil {
					return err
				}
				return reportEnsure(app, manager.EnsureOutcome{Install: result})
			}

			var outcome manager.EnsureOutcome
			if requirementsFile != "" {
				outcome, err = pm.EnsureRequirementsFile(cmd.Context(), requirementsFile, opts)
			} else {
				outcome, err = pm.EnsurePackages(cmd.Context(), pyreq.FromList(args), opts)
			}
			if err != nil {
				return err
			}
			return reportEnsure(app, outcome)
		},
	}

	flags.register(equipCmd, true)
	equipCmd.Flags().StringVarP(&requirementsFile, "requirements", "r", "", "equip from a requirements file")
	equipCmd.Flags().BoolVar(&missingOnly, "missing-only", false, "install only absent packages, without version checks")

	return equipCmd
}

// reportEnsure renders an ensure pass to the user and maps install failure
// to exit code 1.
func reportEnsure(app *App, outcome manager.EnsureOutcome) error {
	for _, skipped := range outcome.Report.Skipped {
		fmt.Fprintln(app.stderr, WarningStyle.Render("Skipped malformed requirement: ")+skipped.Input)
	}

	if outcome.Install == nil || (outcome.Install.CommandLine == "" && outcome.Install.Success()) {
		// The missing-only path carries no reconciliation report, so the
		// checked count is only shown when a reconcile pass produced one.
		note := ""
		if outcome.Report.Checked > 0 {
			note = SubtitleStyle.Render(fmt.Sprintf(" (%d checked)", outcome.Report.Checked))
		}
		fmt.Fprintln(app.stdout, SuccessStyle.Render("All requirements already met")+note)
		return nil
	}

	if len(outcome.Report.Unmet) > 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("Unmet: ")+PkgStyle.Render(strings.Join(outcome.Report.Unmet, " ")))
	}

	if outcome.Install.DryRun {
		fmt.Fprintln(app.stdout, outcome.Install.Output)
		return nil
	}

	if !outcome.Install.Success() {
		fmt.Fprintln(app.stderr, ErrorStyle.Render("Equip failed:"))
		fmt.Fprintln(app.stderr, outcome.Install.Diagnostic())
		return &ExitError{Code: 1}
	}

	fmt.Fprintln(app.stdout, SuccessStyle.Render("Equipped ")+
		PkgStyle.Render(fmt.Sprintf("%d package(s)", len(outcome.Report.Unmet))))
	return nil
}
