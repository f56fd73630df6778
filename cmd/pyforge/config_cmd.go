// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pyforge-cli/internal/config"
)

// newConfigCommand creates the `pyforge config` command tree.
// Subcommands that read configuration use the App's config provider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pyforge configuration",
		Long: `Manage pyforge configuration.

Configuration is stored in:
  - Linux: ~/.config/pyforge/config.toml
  - macOS: ~/Library/Application Support/pyforge/config.toml
  - Windows: %APPDATA%\pyforge\config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	path, pathErr := config.DefaultConfigPath()
	switch {
	case app.cfgFile != "":
		fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render("Config file"), app.cfgFile)
	case pathErr == nil && fileExistsCheck(path):
		fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render("Config file"), path)
	default:
		fmt.Fprintf(app.stdout, "%s: %s\n", PkgStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	rendered, err := config.Render(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(app.stdout, rendered)
	return nil
}

func initConfigFile(app *App) error {
	path, err := config.DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Fprintln(app.stdout, SuccessStyle.Render("Created ")+PkgStyle.Render(path))
	return nil
}

func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
