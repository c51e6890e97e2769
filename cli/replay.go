package cli

import (
	"fmt"
	"os"

	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var replayJSON bool

var replayCmd = &cobra.Command{
	Use:   "replay [script.yaml]",
	Short: "Run a scripted touch sequence offline",
	Long: `Replays a YAML script of touch steps against a fresh compositor on a
simulated clock and prints every gesture, action and view change it caused.
Gesture thresholds come from the config file. Nothing is sent to a server.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := cfg.CompositorOptions()
		if err != nil {
			return err
		}

		response := commands.ReplayCommand(commands.ReplayRequest{
			Path:    args[0],
			Frames:  replayFrames,
			Options: opts,
		})
		if response.Status == "error" || replayJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
			return printResponse(response)
		}

		printReplaySummary(response.Data.(*commands.ReplayResult))
		return nil
	},
}

func printReplaySummary(result *commands.ReplayResult) {
	for _, n := range result.Notifications {
		ms := n.Time.UnixMilli()
		switch n.Kind {
		case compositor.KindGesture:
			ev := n.Event
			fmt.Printf("%6dms  gesture  %-18s edge=%-6s fingers=%d completed=%t\n", ms, ev.Type, ev.Edge, ev.Fingers, ev.Completed)
		case compositor.KindAction:
			fmt.Printf("%6dms  action   %s\n", ms, n.Action)
		case compositor.KindView:
			fmt.Printf("%6dms  view     %s\n", ms, n.State.View)
		case compositor.KindFrame:
			fmt.Printf("%6dms  frame    %s progress=%.2f\n", ms, n.State.Transition, n.State.Progress)
		case compositor.KindOutput:
			fmt.Printf("%6dms  output   %s\n", ms, n.Output)
		}
	}
	fmt.Printf("final view %s after %dms, %d gesture(s)\n", result.Final.View, result.Duration, len(result.Dispatches))
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVar(&replayFrames, "frames", false, "include per-frame notifications")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "print JSON even on a terminal")
}
