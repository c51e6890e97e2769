package commands

import (
	"fmt"

	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/types"
)

type ScreenSizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func screenInfo(c *compositor.Compositor) types.ScreenInfo {
	out := c.Output()
	bandX, bandY := c.Recognizer().EdgeBands()
	return types.ScreenInfo{
		Name:      out.Name,
		Size:      types.Size{Width: int(out.Width), Height: int(out.Height)},
		RefreshHz: out.RefreshHz,
		EdgeBand:  types.Size{Width: int(bandX), Height: int(bandY)},
	}
}

// OutputInfoCommand describes the output and the resulting edge bands
func OutputInfoCommand() *CommandResponse {
	var info types.ScreenInfo
	if err := call(func(c *compositor.Compositor) { info = screenInfo(c) }); err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(info)
}

// ScreenSizeCommand resizes the output, as on a mode change or rotation
func ScreenSizeCommand(req ScreenSizeRequest) *CommandResponse {
	if req.Width <= 0 || req.Height <= 0 {
		return NewErrorResponse(fmt.Errorf("width and height must be positive, got %dx%d", req.Width, req.Height))
	}

	var info types.ScreenInfo
	err := call(func(c *compositor.Compositor) {
		c.SetScreenSize(int32(req.Width), int32(req.Height))
		info = screenInfo(c)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(info)
}
