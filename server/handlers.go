package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ruapotato/Flick-sub004/commands"
)

type TouchParams struct {
	ID int32   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type PointerButtonParams struct {
	Pressed bool    `json:"pressed"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type PointParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type IoLongPressParams struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Duration int     `json:"duration,omitempty"`
}

type IoSwipeParams struct {
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
	Duration int     `json:"duration,omitempty"`
}

type IoGestureParams struct {
	Actions []interface{} `json:"actions"`
}

type IoKeyParams struct {
	Key string `json:"key"`
}

type ViewParams struct {
	View string `json:"view"`
}

type ActionParams struct {
	Action string `json:"action"`
}

type UnlockParams struct {
	Passcode string `json:"passcode"`
}

type OutputSizeParams struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type HistoryParams struct {
	Limit int  `json:"limit,omitempty"`
	Clear bool `json:"clear,omitempty"`
}

type ScreenshotParams struct {
	Format  string  `json:"format,omitempty"`
	Quality int     `json:"quality,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
}

type ReplayParams struct {
	Script json.RawMessage `json:"script"`
	Frames bool            `json:"frames,omitempty"`
}

// decodeParams unmarshals params and checks that every required field is present
func decodeParams(params json.RawMessage, v interface{}, required ...string) error {
	if len(params) == 0 {
		if len(required) == 0 {
			return nil
		}
		return invalidParams("'params' is required with fields: %s", strings.Join(required, ", "))
	}

	if err := json.Unmarshal(params, v); err != nil {
		return invalidParams("invalid parameters: %v. Expected fields: %s", err, strings.Join(required, ", "))
	}

	if len(required) == 0 {
		return nil
	}

	var rawParams map[string]interface{}
	if err := json.Unmarshal(params, &rawParams); err != nil {
		return invalidParams("invalid parameters format")
	}
	for _, field := range required {
		if _, exists := rawParams[field]; !exists {
			return invalidParams("'%s' is required", field)
		}
	}
	return nil
}

// result unwraps a command response into a JSON-RPC result or error
func result(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

func handleTouch(kind string, params json.RawMessage, required ...string) (interface{}, error) {
	var p TouchParams
	if err := decodeParams(params, &p, required...); err != nil {
		return nil, err
	}
	return result(commands.TouchCommand(commands.TouchRequest{Kind: kind, ID: p.ID, X: p.X, Y: p.Y}))
}

func handleTouchDown(params json.RawMessage) (interface{}, error) {
	return handleTouch("down", params, "id", "x", "y")
}

func handleTouchMotion(params json.RawMessage) (interface{}, error) {
	return handleTouch("motion", params, "id", "x", "y")
}

func handleTouchUp(params json.RawMessage) (interface{}, error) {
	return handleTouch("up", params, "id")
}

func handleTouchCancel(params json.RawMessage) (interface{}, error) {
	if _, err := result(commands.TouchCommand(commands.TouchRequest{Kind: "cancel"})); err != nil {
		return nil, err
	}
	return okResponse, nil
}

func handlePointerButton(params json.RawMessage) (interface{}, error) {
	var p PointerButtonParams
	if err := decodeParams(params, &p, "pressed", "x", "y"); err != nil {
		return nil, err
	}

	button := "release"
	if p.Pressed {
		button = "press"
	}
	return result(commands.PointerCommand(commands.PointerRequest{Button: button, X: p.X, Y: p.Y}))
}

func handlePointerMotion(params json.RawMessage) (interface{}, error) {
	var p PointParams
	if err := decodeParams(params, &p, "x", "y"); err != nil {
		return nil, err
	}
	return result(commands.PointerCommand(commands.PointerRequest{X: p.X, Y: p.Y}))
}

func handleIoTap(params json.RawMessage) (interface{}, error) {
	var p PointParams
	if err := decodeParams(params, &p, "x", "y"); err != nil {
		return nil, err
	}
	return result(commands.TapCommand(commands.TapRequest{X: p.X, Y: p.Y}))
}

func handleIoLongPress(params json.RawMessage) (interface{}, error) {
	var p IoLongPressParams
	if err := decodeParams(params, &p, "x", "y"); err != nil {
		return nil, err
	}
	return result(commands.LongPressCommand(commands.LongPressRequest{X: p.X, Y: p.Y, Duration: p.Duration}))
}

func handleIoSwipe(params json.RawMessage) (interface{}, error) {
	var p IoSwipeParams
	if err := decodeParams(params, &p, "x1", "y1", "x2", "y2"); err != nil {
		return nil, err
	}

	req := commands.SwipeRequest{
		X1:       p.X1,
		Y1:       p.Y1,
		X2:       p.X2,
		Y2:       p.Y2,
		Duration: p.Duration,
	}
	return result(commands.SwipeCommand(req))
}

func handleIoGesture(params json.RawMessage) (interface{}, error) {
	var p IoGestureParams
	if err := decodeParams(params, &p, "actions"); err != nil {
		return nil, err
	}
	return result(commands.GestureCommand(commands.GestureRequest{Actions: p.Actions}))
}

func handleIoKey(params json.RawMessage) (interface{}, error) {
	var p IoKeyParams
	if err := decodeParams(params, &p, "key"); err != nil {
		return nil, err
	}
	return result(commands.KeyCommand(commands.KeyRequest{Key: p.Key}))
}

func handleShellState(params json.RawMessage) (interface{}, error) {
	return result(commands.ShellStateCommand())
}

func handleShellGoToView(params json.RawMessage) (interface{}, error) {
	var p ViewParams
	if err := decodeParams(params, &p, "view"); err != nil {
		return nil, err
	}
	return result(commands.GoToViewCommand(commands.GoToViewRequest{View: p.View}))
}

func handleShellAction(params json.RawMessage) (interface{}, error) {
	var p ActionParams
	if err := decodeParams(params, &p, "action"); err != nil {
		return nil, err
	}
	return result(commands.ActionCommand(commands.ActionRequest{Action: p.Action}))
}

func handleShellLock(params json.RawMessage) (interface{}, error) {
	return result(commands.LockCommand())
}

func handleShellUnlock(params json.RawMessage) (interface{}, error) {
	var p UnlockParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return result(commands.UnlockCommand(commands.PasscodeRequest{Passcode: p.Passcode}))
}

func handleOutputInfo(params json.RawMessage) (interface{}, error) {
	return result(commands.OutputInfoCommand())
}

func handleOutputSetSize(params json.RawMessage) (interface{}, error) {
	var p OutputSizeParams
	if err := decodeParams(params, &p, "width", "height"); err != nil {
		return nil, err
	}
	return result(commands.ScreenSizeCommand(commands.ScreenSizeRequest{Width: p.Width, Height: p.Height}))
}

func handleGestureHistory(params json.RawMessage) (interface{}, error) {
	var p HistoryParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return result(commands.HistoryCommand(commands.HistoryRequest{Limit: p.Limit, Clear: p.Clear}))
}

// handleGestureReplay only accepts inline scripts; the server never reads
// client supplied paths
func handleGestureReplay(params json.RawMessage) (interface{}, error) {
	var p ReplayParams
	if err := decodeParams(params, &p, "script"); err != nil {
		return nil, err
	}
	script, err := commands.DecodeReplayScript(p.Script)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	return result(commands.ReplayCommand(commands.ReplayRequest{Script: script, Frames: p.Frames}))
}

func handleScreenshot(params json.RawMessage) (interface{}, error) {
	var p ScreenshotParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return result(commands.ScreenshotCommand(commands.ScreenshotRequest{Format: p.Format, Quality: p.Quality, Scale: p.Scale}))
}

func handleDevicesList(params json.RawMessage) (interface{}, error) {
	return result(commands.DevicesCommand(""))
}

func handleServerShutdown(params json.RawMessage) (interface{}, error) {
	if !requestShutdown() {
		return nil, fmt.Errorf("%s", errMsgServerNotRunning)
	}
	return okResponse, nil
}
