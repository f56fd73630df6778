// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// BackendPip drives environments through `python -m pip`.
	BackendPip Backend = "pip"
	// BackendUv drives environments through the uv executable.
	BackendUv Backend = "uv"
)

var (
	// ErrInvalidBackend is returned when a Backend value is not recognized.
	ErrInvalidBackend = errors.New("invalid backend")
	// ErrInvalidEnvironmentPath is returned when an EnvironmentPath value is
	// non-empty but whitespace-only.
	ErrInvalidEnvironmentPath = errors.New("invalid environment path")
)

type (
	// Backend selects which package-manager tool the CLI shells out to.
	Backend string

	// InvalidBackendError is returned when a Backend value is not
	// recognized. It wraps ErrInvalidBackend for errors.Is() compatibility.
	InvalidBackendError struct {
		Value Backend
	}

	// EnvironmentPath is a filesystem path to a virtual environment root.
	// The zero value ("") is valid and means "use the interpreter on PATH".
	EnvironmentPath string

	// InvalidEnvironmentPathError is returned when an EnvironmentPath value
	// is non-empty but whitespace-only. It wraps ErrInvalidEnvironmentPath.
	InvalidEnvironmentPathError struct {
		Value EnvironmentPath
	}

	// InstallConfig holds the defaults applied to install invocations.
	InstallConfig struct {
		// IndexURL is the default package index (--index-url). Empty uses
		// the backend's default index.
		IndexURL string `mapstructure:"index_url" toml:"index_url"`
		// ExtraArgs is a shell-quoted string of arguments appended to every
		// install invocation.
		ExtraArgs string `mapstructure:"extra_args" toml:"extra_args"`
	}

	// UIConfig holds user-interface settings.
	UIConfig struct {
		// Verbose streams subprocess output and lowers the log level.
		Verbose bool `mapstructure:"verbose" toml:"verbose"`
	}

	// Config is the root application configuration.
	Config struct {
		// Backend selects pip or uv.
		Backend Backend `mapstructure:"backend" toml:"backend"`
		// DefaultEnvironment is the virtual environment targeted when no
		// --env flag is given.
		DefaultEnvironment EnvironmentPath `mapstructure:"default_environment" toml:"default_environment"`
		// Install holds install invocation defaults.
		Install InstallConfig `mapstructure:"install" toml:"install"`
		// UI holds user-interface settings.
		UI UIConfig `mapstructure:"ui" toml:"ui"`
	}
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendPip,
	}
}

// IsValid reports whether the backend value is recognized.
func (b Backend) IsValid() bool {
	return b == BackendPip || b == BackendUv
}

func (e *InvalidBackendError) Error() string {
	return fmt.Sprintf("invalid backend %q (must be %q or %q)", e.Value, BackendPip, BackendUv)
}

func (e *InvalidBackendError) Unwrap() error { return ErrInvalidBackend }

// IsValid reports whether the environment path is usable. Empty is valid;
// whitespace-only is not.
func (p EnvironmentPath) IsValid() bool {
	return p == "" || strings.TrimSpace(string(p)) != ""
}

func (e *InvalidEnvironmentPathError) Error() string {
	return fmt.Sprintf("invalid environment path %q (must not be whitespace-only)", e.Value)
}

func (e *InvalidEnvironmentPathError) Unwrap() error { return ErrInvalidEnvironmentPath }

// Validate checks every typed field and returns the first violation.
func (c *Config) Validate() error {
	if !c.Backend.IsValid() {
		return &InvalidBackendError{Value: c.Backend}
	}
	if !c.DefaultEnvironment.IsValid() {
		return &InvalidEnvironmentPathError{Value: c.DefaultEnvironment}
	}
	return nil
}
