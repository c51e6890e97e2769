package cli

import (
	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run system diagnostics",
	Long:  `Checks input device access, the config file and the system keyring for better troubleshooting`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.DoctorCommand(GetVersion(), configPath))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
