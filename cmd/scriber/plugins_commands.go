package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scriber/internal/plugins"
)

func newPluginsCommand(ctx *commandContext) *cobra.Command {
	pluginsCmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect transcription plugins",
	}

	pluginsCmd.AddCommand(newPluginsDiscoverCommand(ctx))
	pluginsCmd.AddCommand(newPluginsListCommand(ctx))
	pluginsCmd.AddCommand(newPluginsCheckCommand(ctx))

	return pluginsCmd
}

func newPluginsDiscoverCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan the plugins directory for manifests without loading them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			manager, err := ctx.pluginManager()
			if err != nil {
				return err
			}
			manifests, err := manager.DiscoverManifests()
			if err != nil {
				return err
			}
			if len(manifests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plugin manifests found")
				fmt.Fprintf(cmd.OutOrStdout(), "  searched: %s\n", cfg.Paths.PluginsDir)
				return nil
			}

			if jsonOut {
				return writeJSON(cmd, manifests)
			}

			rows := make([][]string, 0, len(manifests))
			for _, manifest := range manifests {
				rows = append(rows, []string{
					manifest.Name, manifest.Version, manifest.Category, manifest.Engine, manifest.Title,
				})
			}
			table := renderTable(
				[]string{"Name", "Version", "Category", "Engine", "Title"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

type pluginListEntry struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Category    string `json:"category"`
	Engine      string `json:"engine"`
	State       string `json:"state"`
	Error       string `json:"error,omitempty"`
	Description string `json:"description,omitempty"`
}

func newPluginsListCommand(ctx *commandContext) *cobra.Command {
	var category string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered plugins and their load state",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.pluginManager()
			if err != nil {
				return err
			}
			if _, err := manager.DiscoverManifests(); err != nil {
				return err
			}
			manager.LoadAll()
			defer manager.UnloadAll()

			list := manager.List(category)
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plugins discovered")
				return nil
			}

			entries := make([]pluginListEntry, 0, len(list))
			for _, plugin := range list {
				entry := pluginListEntry{
					Name:        plugin.Manifest.Name,
					Version:     plugin.Manifest.Version,
					Category:    plugin.Manifest.Category,
					Engine:      plugin.Manifest.Engine,
					State:       string(plugin.State),
					Description: plugin.Manifest.Description,
				}
				if plugin.LoadError != "" {
					entry.Error = plugin.LoadError
				}
				entries = append(entries, entry)
			}

			if jsonOut {
				return writeJSON(cmd, entries)
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Name, entry.Version, entry.Category, entry.Engine, entry.State, entry.Error,
				})
			}
			table := renderTable(
				[]string{"Name", "Version", "Category", "Engine", "State", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only show plugins in this category")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newPluginsCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <name>",
		Short: "Verify that a plugin can load with the current settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			manager, err := ctx.pluginManager()
			if err != nil {
				return err
			}
			if _, err := manager.DiscoverManifests(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			plugin, ok := manager.Registry().Get(name)
			if !ok {
				fmt.Fprintln(out, renderStatusLine("manifest", statusError, "not found", colorize))
				return fmt.Errorf("plugin %q is not discovered", name)
			}
			fmt.Fprintln(out, renderStatusLine("manifest", statusOK, plugin.Manifest.Version, colorize))
			fmt.Fprintln(out, renderStatusLine("engine", statusInfo, plugin.Manifest.Engine, colorize))
			fmt.Fprintln(out, renderStatusLine("configured", statusInfo, yesNo(plugin.Configured()), colorize))

			loadErr := manager.Load(name)
			defer manager.UnloadAll()
			if loadErr != nil {
				fmt.Fprintln(out, renderStatusLine("load", statusError, loadErr.Error(), colorize))
				return fmt.Errorf("plugin %q failed to load", name)
			}

			loaded, _ := manager.Registry().Get(name)
			if loaded.Manifest.Engine == plugins.EngineCommand {
				fmt.Fprintln(out, renderStatusLine("command", statusOK, loaded.CommandPath, colorize))
			}
			fmt.Fprintln(out, renderStatusLine("load", statusOK, "", colorize))
			return nil
		},
	}
}
