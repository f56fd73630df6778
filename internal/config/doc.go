// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with TOML as
// the file format.
//
// Configuration is loaded from ~/.config/pyforge/config.toml (or XDG
// equivalent on Linux, ~/Library/Application Support/pyforge/config.toml on
// macOS, %APPDATA%\pyforge\config.toml on Windows). The package provides
// type-safe configuration access covering backend selection, the default
// environment, and install defaults.
package config
