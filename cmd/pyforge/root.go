// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the full command tree around one App.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pyforge",
		Short: "A pip/uv wrapper for taming Python environments",
		Long: TitleStyle.Render("pyforge") + SubtitleStyle.Render(" - A pip/uv wrapper for taming Python environments") + `

pyforge wraps the pip and uv command-line tools with requirement
reconciliation: given a set of desired package specifiers, it works out
the minimal subset needing installation or update and issues a single
batch command for it.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Forge an environment: pyforge forge -p 3.12 -d ./venv
  2. Equip it with packages: pyforge equip -e ./venv "requests>=2.0"
  3. Scout what's installed: pyforge scout -e ./venv requests

` + SubtitleStyle.Render("Examples:") + `
  pyforge forge -d ./venv -k requests -k rich    Create env with packages
  pyforge equip "numpy>=1.20" --dry-run          Preview an install
  pyforge banish requests                        Uninstall a package
  pyforge scan -e ./venv                         Audit for vulnerabilities
  pyforge config show                            Show current configuration`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if app.verbose {
				app.Logger.SetLevel(log.DebugLevel)
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is $HOME/.config/pyforge/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&app.backendFlag, "backend", "b", "", "package manager backend (pip or uv)")

	rootCmd.AddCommand(newForgeCommand(app))
	rootCmd.AddCommand(newEquipCommand(app))
	rootCmd.AddCommand(newBanishCommand(app))
	rootCmd.AddCommand(newScoutCommand(app))
	rootCmd.AddCommand(newScanCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the CLI. This is called by
// main.main().
func Execute() {
	app := NewApp(nil)

	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}
