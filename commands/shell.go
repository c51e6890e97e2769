package commands

import (
	"errors"
	"fmt"

	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/gesture"
	"github.com/ruapotato/Flick-sub004/shell"
)

// ShellStateResponse is the shell state plus the color the renderer draws
type ShellStateResponse struct {
	shell.State
	Visual shell.Color `json:"visual"`
}

type GoToViewRequest struct {
	View string `json:"view"`
}

type ActionRequest struct {
	Action string `json:"action"`
}

type KeyRequest struct {
	Key string `json:"key"`
}

func shellState(c *compositor.Compositor) ShellStateResponse {
	return ShellStateResponse{State: c.State(), Visual: c.Visual()}
}

// ShellStateCommand reports the current view and transition
func ShellStateCommand() *CommandResponse {
	var state ShellStateResponse
	if err := call(func(c *compositor.Compositor) { state = shellState(c) }); err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(state)
}

var errLocked = errors.New("shell is locked, use shell_unlock to leave the lock screen")

// GoToViewCommand switches view directly. It cannot leave the lock screen;
// only Unlock does that.
func GoToViewCommand(req GoToViewRequest) *CommandResponse {
	if req.View == "" {
		return NewErrorResponse(fmt.Errorf("view is required"))
	}

	view, err := shell.ParseView(req.View)
	if err != nil {
		return NewErrorResponse(err)
	}

	var changed, locked bool
	var state ShellStateResponse
	err = call(func(c *compositor.Compositor) {
		if c.State().View == shell.ViewLock && view != shell.ViewLock {
			locked = true
			return
		}
		changed = c.GoToView(view)
		state = shellState(c)
	})
	if err != nil {
		return NewErrorResponse(err)
	}
	if locked {
		return NewErrorResponse(errLocked)
	}

	return NewSuccessResponse(map[string]interface{}{
		"changed": changed,
		"state":   state,
	})
}

// ActionCommand performs a gesture action as if a gesture had produced it
func ActionCommand(req ActionRequest) *CommandResponse {
	if req.Action == "" {
		return NewErrorResponse(fmt.Errorf("action is required"))
	}

	action, err := gesture.ParseAction(req.Action)
	if err != nil {
		return NewErrorResponse(err)
	}

	var changed bool
	var state ShellStateResponse
	err = call(func(c *compositor.Compositor) {
		changed = c.HandleAction(action)
		state = shellState(c)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"changed": changed,
		"state":   state,
	})
}

// KeyCommand sends a compositor shortcut key
func KeyCommand(req KeyRequest) *CommandResponse {
	key, err := compositor.ParseKey(req.Key)
	if err != nil {
		return NewErrorResponse(err)
	}

	var handled bool
	var state ShellStateResponse
	err = call(func(c *compositor.Compositor) {
		handled = c.Key(key)
		state = shellState(c)
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"handled": handled,
		"state":   state,
	})
}
