package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/spf13/cobra"
)

var ioCmd = &cobra.Command{
	Use:   "io",
	Short: "Inject input into a running compositor",
	Long:  `Send synthetic touches, pointer clicks and key presses to a running flick server.`,
}

// parseCoords splits "x,y[,...]" into exactly n numbers
func parseCoords(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid coordinate format. Expected %d comma separated values, got '%s'", n, s)
	}

	values := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate value '%s'", part)
		}
		values[i] = v
	}
	return values, nil
}

// coordsArg parses the coordinate argument, printing the error the same way
// a failed command would
func coordsArg(s string, n int) ([]float64, error) {
	values, err := parseCoords(s, n)
	if err != nil {
		printJson(commands.NewErrorResponse(err))
		return nil, err
	}
	return values, nil
}

var ioTapCmd = &cobra.Command{
	Use:   "tap [x,y]",
	Short: "Tap the screen at the given coordinates",
	Long:  `Sends a touch down immediately followed by a touch up. Coordinates should be provided as a single string "x,y".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := coordsArg(args[0], 2)
		if err != nil {
			return err
		}
		return callServer("io_tap", map[string]float64{"x": c[0], "y": c[1]})
	},
}

var ioLongPressCmd = &cobra.Command{
	Use:   "longpress [x,y]",
	Short: "Long press the screen at the given coordinates",
	Long:  `Holds a touch at x,y for --duration milliseconds before releasing it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := coordsArg(args[0], 2)
		if err != nil {
			return err
		}
		return callServer("io_longpress", map[string]interface{}{"x": c[0], "y": c[1], "duration": ioDuration})
	},
}

var ioSwipeCmd = &cobra.Command{
	Use:   "swipe [x1,y1,x2,y2]",
	Short: "Swipe from one point to another",
	Long:  `Drags a touch from (x1,y1) to (x2,y2) over --duration milliseconds. Start on a screen edge to trigger an edge swipe.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := coordsArg(args[0], 4)
		if err != nil {
			return err
		}
		return callServer("io_swipe", map[string]interface{}{
			"x1":       c[0],
			"y1":       c[1],
			"x2":       c[2],
			"y2":       c[3],
			"duration": ioDuration,
		})
	},
}

var ioTouchCmd = &cobra.Command{
	Use:   "touch [down|motion|up] [id] [x,y]",
	Short: "Send a single raw touch event",
	Long:  `Sends one touch event with an explicit contact id. Coordinates are not needed for "up".`,
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := args[0]
		id, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			response := commands.NewErrorResponse(fmt.Errorf("invalid touch id '%s'", args[1]))
			printJson(response)
			return fmt.Errorf("%s", response.Error)
		}

		params := map[string]interface{}{"id": id}
		switch kind {
		case "down", "motion":
			if len(args) != 3 {
				return fmt.Errorf("touch %s needs coordinates", kind)
			}
			c, err := coordsArg(args[2], 2)
			if err != nil {
				return err
			}
			params["x"] = c[0]
			params["y"] = c[1]
		case "up":
		default:
			return fmt.Errorf("unknown touch kind '%s', expected down, motion or up", kind)
		}

		return callServer("touch_"+kind, params)
	},
}

var ioCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel every active touch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer("touch_cancel", nil)
	},
}

var ioKeyCmd = &cobra.Command{
	Use:   "key [name]",
	Short: "Press a compositor shortcut key",
	Long:  `Sends a key press handled by the compositor itself. "super" goes home unless the screen is locked.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return callServer("io_key", map[string]string{"key": args[0]})
	},
}

var ioGestureCmd = &cobra.Command{
	Use:   "gesture [actions-json]",
	Short: "Perform a sequence of press, move, wait and release actions",
	Long: `Runs a JSON array of actions, for example:
  [{"type":"press","x":10,"y":1000},{"type":"move","x":600,"y":1000,"duration":200},{"type":"release"}]
Actions with a different "button" use a different finger.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var actions []interface{}
		if err := json.Unmarshal([]byte(args[0]), &actions); err != nil {
			response := commands.NewErrorResponse(fmt.Errorf("invalid actions: %w", err))
			printJson(response)
			return fmt.Errorf("%s", response.Error)
		}
		return callServer("io_gesture", map[string]interface{}{"actions": actions})
	},
}

func init() {
	rootCmd.AddCommand(ioCmd)

	ioCmd.AddCommand(ioTapCmd)
	ioCmd.AddCommand(ioLongPressCmd)
	ioCmd.AddCommand(ioSwipeCmd)
	ioCmd.AddCommand(ioTouchCmd)
	ioCmd.AddCommand(ioCancelCmd)
	ioCmd.AddCommand(ioKeyCmd)
	ioCmd.AddCommand(ioGestureCmd)

	ioLongPressCmd.Flags().IntVar(&ioDuration, "duration", 0, "hold time in milliseconds (default 600)")
	ioSwipeCmd.Flags().IntVar(&ioDuration, "duration", 0, "swipe time in milliseconds (default 300)")
}
