package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/ruapotato/Flick-sub004/daemon"
	"github.com/spf13/cobra"
)

var (
	screenshotOutputPath  string
	screenshotFormat      string
	screenshotJpegQuality int
	screenshotScale       float64
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Save the frame the shell currently shows",
	Long:  `Renders the current shell frame of a running server, including an in-progress transition, and saves it as PNG or JPEG.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := daemon.Call(serverAddr(), "screenshot", commands.ScreenshotRequest{
			Format:  screenshotFormat,
			Quality: screenshotJpegQuality,
			Scale:   screenshotScale,
		})
		if err != nil {
			printJson(commands.NewErrorResponse(err))
			return err
		}

		var shot commands.ScreenshotResponse
		if err := json.Unmarshal(raw, &shot); err != nil {
			return fmt.Errorf("failed to decode screenshot: %w", err)
		}
		imageBytes, err := base64.StdEncoding.DecodeString(shot.Data)
		if err != nil {
			return fmt.Errorf("failed to decode image data: %v", err)
		}

		// Write binary data to stdout
		if screenshotOutputPath == "-" {
			_, err = os.Stdout.Write(imageBytes)
			return err
		}

		path := screenshotOutputPath
		if path == "" {
			extension := "png"
			if shot.Format == "jpeg" {
				extension = "jpg"
			}
			path = fmt.Sprintf("screenshot-%s-%s.%s", shot.View, time.Now().Format("20060102150405"), extension)
		}
		path, err = filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("invalid output path: %v", err)
		}
		if err := os.WriteFile(path, imageBytes, 0o600); err != nil {
			return fmt.Errorf("error writing file: %v", err)
		}

		shot.Data = ""
		printJson(commands.NewSuccessResponse(map[string]interface{}{
			"format":   shot.Format,
			"width":    shot.Width,
			"height":   shot.Height,
			"view":     shot.View,
			"filePath": path,
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(screenshotCmd)

	screenshotCmd.Flags().StringVarP(&screenshotOutputPath, "output", "o", "", "Output file path for screenshot (e.g., screen.png, or '-' for stdout)")
	screenshotCmd.Flags().StringVarP(&screenshotFormat, "format", "f", "png", "Output format for screenshot (png or jpeg)")
	screenshotCmd.Flags().IntVarP(&screenshotJpegQuality, "quality", "q", 90, "JPEG quality (1-100, only applies if format is jpeg)")
	screenshotCmd.Flags().Float64Var(&screenshotScale, "scale", 0, "shrink the image by this factor (0-1], e.g. 0.5")
}
