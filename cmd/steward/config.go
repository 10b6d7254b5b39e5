// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/issue"
	"github.com/stewardhq/steward/internal/svcconfig"

	"github.com/spf13/cobra"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage steward configuration",
		Long: `Manage steward configuration.

Configuration is stored in:
  - Linux: ~/.config/steward/config.toml
  - macOS: ~/Library/Application Support/steward/config.toml
  - Windows: %APPDATA%\steward\config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	}

	configNetCmd = &cobra.Command{
		Use:   "net <service-config.toml>",
		Short: "Show the network settings a service configuration resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showNetConfig(args[0])
		},
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configNetCmd)
}

func showConfig() error {
	keyStyle := HookStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	cfgPath, err := config.ConfigFilePath()
	if err == nil {
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("package_root"), valueStyle.Render(cfg.PackageRoot))
	fmt.Printf("%s: %s\n", keyStyle.Render("service_root"), valueStyle.Render(cfg.ServiceRoot))
	if cfg.ServiceConfig != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("service_config"), valueStyle.Render(cfg.ServiceConfig))
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("service_config"), SubtitleStyle.Render("(none, hooks compile verbatim)"))
	}
	fmt.Printf("%s: %s\n", keyStyle.Render("hooks.grace_period"), valueStyle.Render(cfg.Hooks.GracePeriod.String()))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(fmt.Sprintf("%t", cfg.UI.Verbose)))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.color_scheme"), valueStyle.Render(cfg.UI.ColorScheme))
	return nil
}

func showConfigPath() error {
	cfgPath, err := config.ConfigFilePath()
	if err != nil {
		return issue.WrapWithOperation(err, "resolve configuration file path")
	}
	fmt.Println(cfgPath)
	return nil
}

// showNetConfig decodes and prints the cluster/network surface of a service
// configuration document, applying defaults for absent fields.
func showNetConfig(path string) error {
	snap, err := svcconfig.Load(path)
	if err != nil {
		return issue.WrapWithContext(err, "load service configuration", path).
			WithSuggestion("Check that the file exists and is valid TOML")
	}
	net, err := svcconfig.DecodeNetCfg(snap)
	if err != nil {
		return issue.WrapWithContext(err, "decode network configuration", path)
	}

	keyStyle := HookStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Network Configuration"))
	fmt.Println()
	fmt.Printf("%s: %s\n", keyStyle.Render("worker_count"), valueStyle.Render(fmt.Sprintf("%d", net.WorkerCount)))
	fmt.Printf("%s: %s\n", keyStyle.Render("github_url"), valueStyle.Render(net.GitHubURL))
	fmt.Printf("%s: %s\n", keyStyle.Render("heartbeat_port"), valueStyle.Render(fmt.Sprintf("%d", net.HeartbeatPort)))
	if len(net.RouteAddrs) == 0 {
		fmt.Printf("%s: %s\n", keyStyle.Render("route_addrs"), SubtitleStyle.Render("(none)"))
	} else {
		for _, addr := range net.RouteAddrs {
			fmt.Printf("%s: %s\n", keyStyle.Render("route_addr"), valueStyle.Render(svcconfig.AddrString(addr)))
		}
	}
	if len(net.Shards) > 0 {
		fmt.Printf("%s: %s\n", keyStyle.Render("shards"), valueStyle.Render(fmt.Sprintf("%v", net.Shards)))
	}
	return nil
}
