// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/stewardhq/steward/internal/hook"
	"github.com/stewardhq/steward/internal/issue"
	"github.com/stewardhq/steward/internal/watch"

	"github.com/spf13/cobra"
)

var (
	// watchDebounceFlag is the quiet period before recompiling after a change.
	watchDebounceFlag time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch <package-dir>",
		Short: "Recompile hooks when templates or the service configuration change",
		Long: `Recompile hooks when templates or the service configuration change.

Watches the package's hooks/ directory and, when set, the service
configuration file. On change, all defined hooks are recompiled and the
reconfigure hook (if the package defines one) is dispatched. Runs until
interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0])
		},
	}
)

func init() {
	watchCmd.Flags().StringVar(&svcRootFlag, "svc-root", "", "service directory for compiled artifacts (default: <package-dir>/svc)")
	watchCmd.Flags().StringVar(&serviceCfgFlag, "service-config", "", "service configuration TOML to render into hook templates")
	watchCmd.Flags().DurationVar(&watchDebounceFlag, "debounce", 500*time.Millisecond, "quiet period before recompiling after a change")
}

// runWatch compiles the package's hooks once, then blocks recompiling on
// every change until the context is cancelled (e.g. Ctrl+C).
func runWatch(cmd *cobra.Command, dir string) error {
	table, err := loadPackageTable(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(table.Package().SvcHooksDir(), 0o755); err != nil {
		return issue.WrapWithContext(err, "create service hooks directory", table.Package().SvcHooksDir())
	}

	// Initial compile before the watcher starts. Failures are reported but
	// do not stop the watcher; the user may fix the template and save again.
	if err := recompileAll(dir); err != nil {
		fmt.Fprintf(os.Stderr, "%s Initial compile failed: %v\n", WarningStyle.Render("!"), err)
	}

	paths := []string{table.Package().HooksDir()}
	svcCfgPath := serviceCfgFlag
	if svcCfgPath == "" {
		svcCfgPath = cfg.ServiceConfig
	}
	if svcCfgPath != "" {
		paths = append(paths, svcCfgPath)
	}

	w, err := watch.New(watch.Config{
		Paths:    paths,
		Debounce: watchDebounceFlag,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Printf("%s %d change(s) detected, recompiling\n", HookStyle.Render("→"), len(changed))
			if err := recompileAll(dir); err != nil {
				return err
			}
			return dispatchReconfigure(ctx, dir)
		},
		Stderr: os.Stderr,
	})
	if err != nil {
		return issue.WrapWithContext(err, "start watcher", dir).
			WithSuggestion("Check that the package has a hooks/ directory")
	}

	fmt.Printf("%s Watching for changes (Ctrl+C to stop)...\n", HookStyle.Render("→"))
	return w.Run(cmd.Context())
}

// recompileAll reloads the hook table and compiles every defined hook. The
// table is reloaded each time so templates added or removed while watching
// are picked up.
func recompileAll(dir string) error {
	table, err := loadPackageTable(dir)
	if err != nil {
		return err
	}
	snap, err := loadSnapshot()
	if err != nil {
		return err
	}
	for _, t := range table.Defined() {
		h, _ := table.Get(t)
		if err := h.Compile(snap); err != nil {
			return issue.WrapWithContext(err, "compile hook", t.String())
		}
		fmt.Printf("%s compiled %s\n", SuccessStyle.Render("✓"), HookStyle.Render(h.Path))
	}
	return nil
}

// dispatchReconfigure runs the reconfigure hook if the package defines one.
// Hook failures are reported, not fatal: the watcher keeps running.
func dispatchReconfigure(ctx context.Context, dir string) error {
	table, err := loadPackageTable(dir)
	if err != nil {
		return err
	}
	h, ok := table.Get(hook.Reconfigure)
	if !ok {
		return nil
	}
	snap, err := loadSnapshot()
	if err != nil {
		return err
	}
	h.GracePeriod = cfg.Hooks.GracePeriod
	sink := hook.NewLogSink(newHookLogger())
	if err := table.Dispatch(ctx, hook.Reconfigure, snap, sink); err != nil {
		return fmt.Errorf("reconfigure hook: %w", err)
	}
	return nil
}
