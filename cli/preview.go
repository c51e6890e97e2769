package cli

import (
	"fmt"
	"os"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"

	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/preview"
	"github.com/ruapotato/Flick-sub004/utils"
	"github.com/spf13/cobra"
)

const previewHeight = 800

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Open a window that simulates the phone screen",
	Long: `Opens a desktop window running its own compositor. Drag with the mouse or
touch the window to perform gestures; start at a window edge for edge swipes.
The Super or Home key goes home.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := cfg.CompositorOptions()
		if err != nil {
			return err
		}

		output := cfg.OutputConfig()
		c, err := compositor.New(output, append(opts, compositor.WithLogger(utils.Logger()))...)
		if err != nil {
			return err
		}

		width := previewHeight * int(output.Width) / int(output.Height)
		go func() {
			w := new(app.Window)
			w.Option(app.Title(windowTitle(c.State().View.String())))
			w.Option(app.Size(unit.Dp(width), unit.Dp(previewHeight)))

			if err := runPreview(w, preview.New(c)); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			os.Exit(0)
		}()
		app.Main()
		return nil
	},
}

func windowTitle(view string) string {
	return "Flick - " + view
}

func runPreview(w *app.Window, p *preview.Preview) error {
	view := p.View()

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			p.Layout(gtx)
			e.Frame(gtx.Ops)

			if v := p.View(); v != view {
				view = v
				w.Option(app.Title(windowTitle(v.String())))
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
