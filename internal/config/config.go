// SPDX-License-Identifier: MPL-2.0

// Package config handles steward's own settings using Viper.
//
// Settings live in a TOML file under the platform config directory and can
// be overridden through STEWARD_* environment variables. This is steward's
// operator-facing configuration; it is unrelated to the per-service
// configuration snapshots rendered into hooks (see internal/svcconfig).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/stewardhq/steward/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "steward"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "STEWARD"

	// DefaultPackageRoot is where installed packages live.
	DefaultPackageRoot = "/opt/steward/pkgs"
	// DefaultServiceRoot is where per-service state (including compiled
	// hooks) lives.
	DefaultServiceRoot = "/var/steward/svc"
)

type (
	// HooksConfig tunes hook execution.
	HooksConfig struct {
		// GracePeriod bounds how long a cancelled hook may linger between
		// the termination signal and the forced kill.
		GracePeriod time.Duration `mapstructure:"grace_period"`
	}

	// UIConfig controls CLI output behavior.
	UIConfig struct {
		// Verbose enables verbose output.
		Verbose bool `mapstructure:"verbose"`
		// ColorScheme selects the terminal color scheme (auto, dark, light).
		ColorScheme string `mapstructure:"color_scheme"`
	}

	// Config is steward's resolved settings tree.
	Config struct {
		// PackageRoot is the directory installed packages are resolved under.
		PackageRoot string `mapstructure:"package_root"`
		// ServiceRoot is the directory per-service state is kept under.
		ServiceRoot string `mapstructure:"service_root"`
		// ServiceConfig is the default service configuration file rendered
		// into hooks when no --config flag is given. Empty means compile
		// hooks verbatim.
		ServiceConfig string `mapstructure:"service_config"`
		// Hooks tunes hook execution.
		Hooks HooksConfig `mapstructure:"hooks"`
		// UI controls CLI output behavior.
		UI UIConfig `mapstructure:"ui"`
	}
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		PackageRoot: DefaultPackageRoot,
		ServiceRoot: DefaultServiceRoot,
		Hooks:       HooksConfig{GracePeriod: 5 * time.Second},
		UI:          UIConfig{ColorScheme: "auto"},
	}
}

// ConfigDir returns the steward configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ConfigFilePath returns the path the settings file is loaded from, taking
// overrides into account. The file may not exist.
func ConfigFilePath() (string, error) {
	if configFilePathOverride != "" {
		return configFilePathOverride, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load reads steward's settings. A missing settings file is not an error;
// defaults apply. A present-but-broken file is surfaced as an actionable
// error.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("package_root", defaults.PackageRoot)
	v.SetDefault("service_root", defaults.ServiceRoot)
	v.SetDefault("service_config", defaults.ServiceConfig)
	v.SetDefault("hooks.grace_period", defaults.Hooks.GracePeriod)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := ConfigFilePath()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	v.SetConfigType(ConfigFileExt)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) || isNotFound(err) {
			// No settings file; defaults and env overrides apply.
		} else {
			return nil, issue.WrapWithContext(err, "load configuration", path).
				WithSuggestion("Check that the file contains valid TOML syntax").
				WithSuggestion("See 'steward config show' for the expected settings")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, issue.WrapWithContext(err, "decode configuration", path).
			WithSuggestion("Verify the configuration values match the expected types")
	}
	if cfg.Hooks.GracePeriod < 0 {
		return nil, issue.WrapWithContext(
			fmt.Errorf("hooks.grace_period must not be negative, got %s", cfg.Hooks.GracePeriod),
			"validate configuration", path)
	}
	return cfg, nil
}

// isNotFound reports whether err is viper's own file-not-found error.
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}
