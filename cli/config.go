package cli

import (
	"fmt"
	"os"

	"github.com/ruapotato/Flick-sub004/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
	Long:  `Commands for inspecting and creating the flick configuration file. INI, TOML, YAML and JSON files are accepted, picked by extension.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Prints the configuration after defaults, the config file and FLICK_* environment overrides are applied.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := cfg.Encode(configFormat)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists, use --force to overwrite it", path)
		}

		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}

		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configShowCmd.Flags().StringVarP(&configFormat, "format", "f", "ini", "output format (ini, toml, yaml or json)")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
}
