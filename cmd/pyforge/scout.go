// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// newScoutCommand creates the `pyforge scout` command: report a package's
// presence, version, and metadata.
func newScoutCommand(app *App) *cobra.Command {
	var (
		flags     installFlags
		specifier string
		plain     bool
	)

	scoutCmd := &cobra.Command{
		Use:   "scout <package>",
		Short: "Scout a package in an environment",
		Example: `  pyforge scout requests
  pyforge scout requests -e ./venv
  pyforge scout numpy --specifier ">=1.20"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg := args[0]

			pm, _, err := app.buildManager(cmd.Context(), flags.env)
			if err != nil {
				return err
			}

			version, installed, err := pm.InstalledVersion(cmd.Context(), pkg)
			if err != nil {
				return err
			}

			var md strings.Builder
			fmt.Fprintf(&md, "# %s\n\n", pkg)
			if !installed {
				md.WriteString("Not installed.\n")
			} else {
				fmt.Fprintf(&md, "- **Installed version:** %s\n", version)
				if specifier != "" {
					compatible, err := pm.IsVersionCompatible(cmd.Context(), pkg, specifier)
					if err != nil {
						return err
					}
					fmt.Fprintf(&md, "- **Satisfies `%s`:** %v\n", specifier, compatible)
				}

				if info := pm.PackageInfo(cmd.Context(), pkg); info.Success() && strings.TrimSpace(info.Output) != "" {
					fmt.Fprintf(&md, "\n```\n%s\n```\n", strings.TrimSpace(info.Output))
				}
			}

			output := md.String()
			if !plain {
				rendered, err := renderMarkdown(output)
				if err == nil {
					output = rendered
				}
			}
			fmt.Fprint(app.stdout, output)
			return nil
		},
	}

	flags.register(scoutCmd, false)
	scoutCmd.Flags().StringVarP(&specifier, "specifier", "s", "", "version specifier to check the installed version against")
	scoutCmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown without terminal rendering")

	return scoutCmd
}

// renderMarkdown renders markdown for the terminal using glamour.
func renderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}
