package commands

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/shell"
	"github.com/ruapotato/Flick-sub004/utils"
)

var progressBarColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xc0}

// ScreenshotRequest represents the parameters for taking a screenshot
type ScreenshotRequest struct {
	Format  string `json:"format,omitempty"`  // "png" or "jpeg"
	Quality int    `json:"quality,omitempty"` // 1-100, only used for JPEG
	// Scale shrinks the image, (0,1]; 0 keeps the output size
	Scale float64 `json:"scale,omitempty"`
}

// ScreenshotResponse represents the response for a screenshot command
type ScreenshotResponse struct {
	Format string     `json:"format"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	View   shell.View `json:"view"`
	Data   string     `json:"data"` // base64 encoded image data
}

// RenderFrame draws what the shell shows: the visual color over the whole
// output and, while a gesture or animation is in progress, a progress bar
// along the bottom edge
func RenderFrame(width, height int, state shell.State, visual shell.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: visual.NRGBA()}, image.Point{}, draw.Src)

	progress := state.Progress
	if progress <= 0 || state.Transition == shell.TransitionNone {
		return img
	}
	if progress > 1 {
		progress = 1
	}

	barHeight := height / 200
	if barHeight < 2 {
		barHeight = 2
	}
	bar := image.Rect(0, height-barHeight, int(float64(width)*progress), height)
	draw.Draw(img, bar, &image.Uniform{C: progressBarColor}, image.Point{}, draw.Over)
	return img
}

// ScreenshotCommand renders the current frame of the compositor
func ScreenshotCommand(req ScreenshotRequest) *CommandResponse {
	if req.Format == "" {
		req.Format = "png"
	}

	req.Format = strings.ToLower(req.Format)
	if req.Format != "png" && req.Format != "jpeg" {
		return NewErrorResponse(fmt.Errorf("invalid format '%s'. Supported formats are 'png' and 'jpeg'", req.Format))
	}

	if req.Format == "jpeg" && (req.Quality < 1 || req.Quality > 100) {
		req.Quality = 90 // Default quality
	}

	if req.Scale < 0 || req.Scale > 1 {
		return NewErrorResponse(fmt.Errorf("invalid scale %v, expected a value in (0,1]", req.Scale))
	}

	var out compositor.Output
	var state ShellStateResponse
	err := call(func(c *compositor.Compositor) {
		out = c.Output()
		state = shellState(c)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	var img image.Image = RenderFrame(int(out.Width), int(out.Height), state.State, state.Visual)
	if req.Scale > 0 && req.Scale < 1 {
		width := int(float64(out.Width)*req.Scale + 0.5)
		if width < 1 {
			width = 1
		}
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	size := img.Bounds().Size()

	imageBytes, err := utils.EncodeImage(img, req.Format, req.Quality)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error encoding screenshot: %w", err))
	}

	return NewSuccessResponse(ScreenshotResponse{
		Format: req.Format,
		Width:  size.X,
		Height: size.Y,
		View:   state.View,
		Data:   base64.StdEncoding.EncodeToString(imageBytes),
	})
}
