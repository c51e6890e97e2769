package cli

import (
	"github.com/ruapotato/Flick-sub004/config"
	"github.com/spf13/cobra"
)

var outputCmd = &cobra.Command{
	Use:   "output",
	Short: "Output size commands",
	Long:  `Commands for reading and changing the output size the edge bands are computed from.`,
}

var outputInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the output name, size and edge bands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer("output_info", nil)
	},
}

var outputSetSizeCmd = &cobra.Command{
	Use:   "set-size [WIDTHxHEIGHT]",
	Short: "Resize the output, as after a rotation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, h, err := config.ParseSize(args[0])
		if err != nil {
			return err
		}
		return callServer("output_set_size", map[string]int{"width": w, "height": h})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print recently recognized gestures, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		clearHistory, _ := cmd.Flags().GetBool("clear")
		return callServer("gesture_history", map[string]interface{}{"limit": limit, "clear": clearHistory})
	},
}

func init() {
	rootCmd.AddCommand(outputCmd)
	rootCmd.AddCommand(historyCmd)

	outputCmd.AddCommand(outputInfoCmd)
	outputCmd.AddCommand(outputSetSizeCmd)

	historyCmd.Flags().Int("limit", 20, "number of gestures to print, 0 for all")
	historyCmd.Flags().Bool("clear", false, "clear the history after printing it")
}
