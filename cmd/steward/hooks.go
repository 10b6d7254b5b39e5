// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/stewardhq/steward/internal/hook"
	"github.com/stewardhq/steward/internal/issue"
	"github.com/stewardhq/steward/internal/svcconfig"
	"github.com/stewardhq/steward/internal/template"
	"github.com/stewardhq/steward/pkg/pkgpath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// svcRootFlag overrides where compiled hook artifacts are written.
	svcRootFlag string
	// serviceCfgFlag points at the service configuration TOML rendered
	// into hook templates. Empty means verbatim compilation.
	serviceCfgFlag string
	// checkShellFlag enables advisory shell syntax checking of compiled
	// artifacts.
	checkShellFlag bool

	hooksCmd = &cobra.Command{
		Use:   "hooks",
		Short: "Inspect, compile, and run package lifecycle hooks",
		Long: `Inspect, compile, and run package lifecycle hooks.

A package ships hook templates under <package>/hooks/; steward compiles
them against the service configuration into runnable artifacts under the
service directory and executes them at lifecycle events.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	hooksListCmd = &cobra.Command{
		Use:   "list <package-dir>",
		Short: "List the hooks a package defines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHooks(args[0])
		},
	}

	hooksCompileCmd = &cobra.Command{
		Use:   "compile <package-dir>",
		Short: "Compile all defined hooks into runnable artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return compileHooks(args[0])
		},
	}

	hooksRunCmd = &cobra.Command{
		Use:   "run <package-dir> <event>",
		Short: "Compile and run one lifecycle hook",
		Long: `Compile and run one lifecycle hook.

The event must be one of: init, health_check, reconfigure, run.
The hook's exit code becomes steward's exit code. Running an event the
package does not define is a no-op.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd, args[0], args[1])
		},
	}
)

func init() {
	for _, c := range []*cobra.Command{hooksCompileCmd, hooksRunCmd} {
		c.Flags().StringVar(&svcRootFlag, "svc-root", "", "service directory for compiled artifacts (default: <package-dir>/svc)")
		c.Flags().StringVar(&serviceCfgFlag, "service-config", "", "service configuration TOML to render into hook templates")
	}
	hooksCompileCmd.Flags().BoolVar(&checkShellFlag, "check", false, "syntax-check compiled artifacts as shell scripts (advisory)")
	hooksListCmd.Flags().StringVar(&svcRootFlag, "svc-root", "", "service directory for compiled artifacts (default: <package-dir>/svc)")

	hooksCmd.AddCommand(hooksListCmd)
	hooksCmd.AddCommand(hooksCompileCmd)
	hooksCmd.AddCommand(hooksRunCmd)
}

// loadPackageTable builds the hook table for the package at dir.
func loadPackageTable(dir string) (*hook.Table, error) {
	pkg, err := pkgpath.FromDir(dir, svcRootFlag)
	if err != nil {
		return nil, issue.WrapWithContext(err, "resolve package", dir).
			WithSuggestion("Pass the directory of an installed package, e.g. /opt/steward/pkgs/redis")
	}
	return hook.LoadTable(pkg), nil
}

// loadSnapshot loads the service configuration named by --service-config,
// falling back to the configured default. A nil snapshot means hooks are
// compiled verbatim.
func loadSnapshot() (*svcconfig.Snapshot, error) {
	path := serviceCfgFlag
	if path == "" {
		path = cfg.ServiceConfig
	}
	if path == "" {
		return nil, nil
	}
	snap, err := svcconfig.Load(path)
	if err != nil {
		return nil, issue.WrapWithContext(err, "load service configuration", path).
			WithSuggestion("Check that the file exists and is valid TOML")
	}
	return snap, nil
}

func listHooks(dir string) error {
	table, err := loadPackageTable(dir)
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render("Hooks for " + table.Package().Name))
	fmt.Println()
	defined := make(map[hook.Type]bool)
	for _, t := range table.Defined() {
		defined[t] = true
	}
	for _, t := range hook.Types() {
		if defined[t] {
			h, _ := table.Get(t)
			fmt.Printf("  %s  %s\n", HookStyle.Render(fmt.Sprintf("%-13s", t.String())), h.TemplatePath)
		} else {
			fmt.Printf("  %s  %s\n", SubtitleStyle.Render(fmt.Sprintf("%-13s", t.String())), SubtitleStyle.Render("(not defined)"))
		}
	}
	return nil
}

func compileHooks(dir string) error {
	table, err := loadPackageTable(dir)
	if err != nil {
		return err
	}
	snap, err := loadSnapshot()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(table.Package().SvcHooksDir(), 0o755); err != nil {
		return issue.WrapWithContext(err, "create service hooks directory", table.Package().SvcHooksDir())
	}

	for _, t := range table.Defined() {
		h, _ := table.Get(t)
		if err := h.Compile(snap); err != nil {
			return issue.WrapWithContext(err, "compile hook", t.String()).
				WithSuggestion("Check the template for mustache syntax errors").
				WithSuggestion("Verify the service configuration provides the fields the template references")
		}
		fmt.Printf("%s compiled %s\n", SuccessStyle.Render("✓"), HookStyle.Render(h.Path))

		if checkShellFlag {
			src, readErr := os.ReadFile(h.Path)
			if readErr != nil {
				return issue.WrapWithContext(readErr, "read compiled hook", h.Path)
			}
			if checkErr := template.CheckShell(t.String(), src); checkErr != nil {
				fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+checkErr.Error())
			}
		}
	}
	if len(table.Defined()) == 0 {
		fmt.Println(SubtitleStyle.Render("package defines no hooks"))
	}
	return nil
}

func runHook(cmd *cobra.Command, dir, event string) error {
	t, err := hook.ParseType(event)
	if err != nil {
		return issue.WrapWithContext(err, "parse hook event", event).
			WithSuggestion("Valid events are: init, health_check, reconfigure, run")
	}

	table, err := loadPackageTable(dir)
	if err != nil {
		return err
	}
	snap, err := loadSnapshot()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(table.Package().SvcHooksDir(), 0o755); err != nil {
		return issue.WrapWithContext(err, "create service hooks directory", table.Package().SvcHooksDir())
	}
	if h, ok := table.Get(t); ok {
		h.GracePeriod = cfg.Hooks.GracePeriod
	}

	sink := hook.NewLogSink(newHookLogger())
	if err := table.Dispatch(cmd.Context(), t, snap, sink); err != nil {
		var failed *hook.FailedError
		if errors.As(err, &failed) && failed.Code != hook.SpawnFailureCode {
			return &ExitError{Code: failed.Code, Err: err}
		}
		return issue.WrapWithContext(err, "run hook", t.String())
	}
	return nil
}

// newHookLogger builds the logger hook output is streamed through.
func newHookLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
}
