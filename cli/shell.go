package cli

import (
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Inspect and drive the shell view",
	Long:  `Commands for reading the current view and switching between lock, home, app, app_switcher and quick_settings.`,
}

var shellStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the current view, transition and visual color",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer("shell_state", nil)
	},
}

var shellGoCmd = &cobra.Command{
	Use:       "go [view]",
	Short:     "Switch to a view immediately",
	Long:      `Sets the view without an animation. This is the only way out of the lock screen apart from unlock.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"lock", "home", "app", "app_switcher", "quick_settings"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer("shell_go_to_view", map[string]string{"view": args[0]})
	},
}

var shellActionCmd = &cobra.Command{
	Use:       "action [action]",
	Short:     "Apply a gesture action as if a gesture had produced it",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"go_home", "close_app", "app_switcher", "quick_settings", "show_keyboard"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer("shell_action", map[string]string{"action": args[0]})
	},
}

var shellLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Show the lock screen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer("shell_lock", nil)
	},
}

var shellUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Leave the lock screen",
	Long:  `Checks the passcode against the one stored with "flick lock set-pin" and goes home when it matches. The passcode is prompted for when stdin is a terminal.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		passcode, err := readPasscode(cmd, "Passcode: ")
		if err != nil {
			return err
		}
		return callServer("shell_unlock", map[string]string{"passcode": passcode})
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)

	shellCmd.AddCommand(shellStateCmd)
	shellCmd.AddCommand(shellGoCmd)
	shellCmd.AddCommand(shellActionCmd)
	shellCmd.AddCommand(shellLockCmd)
	shellCmd.AddCommand(shellUnlockCmd)

	shellUnlockCmd.Flags().String("passcode", "", "passcode, prompted for when omitted")
}
