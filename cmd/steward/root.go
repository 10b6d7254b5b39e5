// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for steward.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// cfg is the resolved configuration, populated by initRootConfig
	// before any command runs.
	cfg = config.DefaultConfig()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "steward",
		Short: "A supervisor for packaged services and their lifecycle hooks",
		Long: TitleStyle.Render("steward") + SubtitleStyle.Render(" - A supervisor for packaged services and their lifecycle hooks") + `

steward manages services installed as self-describing packages. Each
package may ship lifecycle hooks (init, health_check, reconfigure, run)
as mustache templates; steward compiles them against the service's
TOML configuration and executes the resulting artifacts at the right
points of the service lifecycle.

` + SubtitleStyle.Render("Examples:") + `
  steward hooks list /opt/steward/pkgs/redis    List a package's hooks
  steward hooks compile /opt/steward/pkgs/redis Compile hooks to runnable artifacts
  steward hooks run /opt/steward/pkgs/redis init   Compile and run the init hook
  steward watch /opt/steward/pkgs/redis         Recompile on template changes
  steward config show                           Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/steward/config.toml)")

	// Add subcommands
	rootCmd.AddCommand(hooksCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in the config file and ENV variables if set.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	loaded, err := config.Load()
	if err != nil {
		// Config errors never abort the CLI; defaults still apply.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	if loaded != nil {
		cfg = loaded
		if !verbose {
			verbose = cfg.UI.Verbose
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
