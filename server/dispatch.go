package server

import (
	"encoding/json"
	"fmt"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// invalidParamsError marks errors caused by malformed params, reported as
// ErrCodeInvalidParams instead of a server error
type invalidParamsError struct {
	msg string
}

func (e *invalidParamsError) Error() string {
	return e.msg
}

func invalidParams(format string, args ...interface{}) error {
	return &invalidParamsError{msg: fmt.Sprintf(format, args...)}
}

// GetMethodRegistry returns a map of method names to handler functions
// This is used by both the HTTP server and the websocket handler
func GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"touch_down":       handleTouchDown,
		"touch_motion":     handleTouchMotion,
		"touch_up":         handleTouchUp,
		"touch_cancel":     handleTouchCancel,
		"pointer_button":   handlePointerButton,
		"pointer_motion":   handlePointerMotion,
		"io_tap":           handleIoTap,
		"io_longpress":     handleIoLongPress,
		"io_swipe":         handleIoSwipe,
		"io_gesture":       handleIoGesture,
		"io_key":           handleIoKey,
		"shell_state":      handleShellState,
		"shell_go_to_view": handleShellGoToView,
		"shell_action":     handleShellAction,
		"shell_lock":       handleShellLock,
		"shell_unlock":     handleShellUnlock,
		"output_info":      handleOutputInfo,
		"output_set_size":  handleOutputSetSize,
		"gesture_history":  handleGestureHistory,
		"gesture_replay":   handleGestureReplay,
		"screenshot":       handleScreenshot,
		"devices":          handleDevicesList,
		"server.shutdown":  handleServerShutdown,
	}
}

// Execute dispatches a method call using the registry
// This is the main entry point for embedded clients
func Execute(method string, params json.RawMessage) (interface{}, error) {
	registry := GetMethodRegistry()

	handler, exists := registry[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(params)
}
