package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"crosspost/internal/config"
	"crosspost/internal/publisher"
	"crosspost/internal/ux"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the crosspost config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintf(stdout, "# %s\n%s", configPath, data)
		return nil
	},
}

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List the supported platforms",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ux.NewSimpleTable("Platforms", []string{"#", "ID", "Name", "Enabled", "Editor"})
		for i, p := range publisher.AllPlatforms {
			sel := publisher.DefaultSelectors(p).Override(cfg.Platform(string(p)))
			enabled := "yes"
			if !cfg.Platform(string(p)).Enabled {
				enabled = "no"
			}
			t.AddRow(fmt.Sprint(i+1), string(p), p.DisplayName(), enabled, sel.EditorURL)
		}
		fmt.Fprint(stdout, t.View(ux.NewStyles(ux.DetectTheme())))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
