// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pyforge-cli/internal/audit"
)

// newScanCommand creates the `pyforge scan` command: audit an environment
// for known vulnerabilities using pip-audit.
func newScanCommand(app *App) *cobra.Command {
	var (
		flags            installFlags
		requirementsFile string
	)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan an environment for known vulnerabilities",
		Long: `Scan an environment for known vulnerabilities with pip-audit.

When pip-audit is missing or fails, the scan conservatively reports
vulnerabilities as present rather than silently passing.`,
		Example: `  pyforge scan
  pyforge scan -e ./venv
  pyforge scan -r requirements.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, _, err := app.buildManager(cmd.Context(), flags.env)
			if err != nil {
				return err
			}

			report := pm.CheckVulnerabilities(cmd.Context(), audit.Options{
				RequirementsFile: requirementsFile,
			})

			if report.Found {
				fmt.Fprintln(app.stdout, ErrorStyle.Render("Vulnerabilities found:"))
				fmt.Fprintln(app.stdout, report.Output)
				return &ExitError{Code: 1}
			}

			fmt.Fprintln(app.stdout, SuccessStyle.Render("No known vulnerabilities"))
			if report.Output != "" {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render(report.Output))
			}
			return nil
		},
	}

	flags.register(scanCmd, false)
	scanCmd.Flags().StringVarP(&requirementsFile, "requirements", "r", "", "scan the packages named in a requirements file")

	return scanCmd
}
