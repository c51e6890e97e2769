package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock screen passcode commands",
	Long:  `Commands for managing the lock screen passcode. The passcode is stored as a bcrypt hash in the system keyring.`,
}

var lockSetPinCmd = &cobra.Command{
	Use:   "set-pin",
	Short: "Set the lock screen passcode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		passcode, err := readPasscode(cmd, "New passcode: ")
		if err != nil {
			return err
		}

		if term.IsTerminal(int(os.Stdin.Fd())) && !cmd.Flags().Changed("passcode") {
			confirm, err := promptPassword("Repeat passcode: ")
			if err != nil {
				return err
			}
			if confirm != passcode {
				return fmt.Errorf("passcodes do not match")
			}
		}

		return printResponse(commands.SetPasscodeCommand(commands.PasscodeRequest{Passcode: passcode}))
	},
}

var lockClearPinCmd = &cobra.Command{
	Use:   "clear-pin",
	Short: "Remove the lock screen passcode",
	Long:  `Removes the stored passcode. Unlocking then needs no passcode.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(commands.ClearPasscodeCommand())
	},
}

// readPasscode takes --passcode when given, prompts without echo on a
// terminal, and otherwise reads one line from stdin
func readPasscode(cmd *cobra.Command, prompt string) (string, error) {
	if cmd.Flags().Changed("passcode") {
		passcode, _ := cmd.Flags().GetString("passcode")
		return passcode, nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return promptPassword(prompt)
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("failed to read passcode from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read passcode: %w", err)
	}
	return string(b), nil
}

func init() {
	rootCmd.AddCommand(lockCmd)

	lockCmd.AddCommand(lockSetPinCmd)
	lockCmd.AddCommand(lockClearPinCmd)

	lockSetPinCmd.Flags().String("passcode", "", "passcode, prompted for when omitted")
}
