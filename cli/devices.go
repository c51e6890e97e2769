package cli

import (
	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/spf13/cobra"
)

var devicesRemote bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List touchscreens",
	Long:  `List the multi-touch screens under the input directory. With --remote the running server is asked instead, which also reports which screens it reads from.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if devicesRemote {
			return callServer("devices", nil)
		}

		dir := inputDir
		if dir == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir = cfg.Input.Dir
		}
		return printResponse(commands.DevicesCommand(dir))
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	// devices command flags
	devicesCmd.Flags().StringVar(&inputDir, "dir", "", "input device directory (default: input.dir from the config)")
	devicesCmd.Flags().BoolVar(&devicesRemote, "remote", false, "ask the running server")
}
