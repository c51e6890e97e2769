package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/devices"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

var errNoEventLoop = errors.New("compositor is not running")

// eventLoop is set once at startup by the server; every command that touches
// the compositor goes through it
var eventLoop *compositor.EventLoop

// SetEventLoop sets the running compositor loop commands operate on
func SetEventLoop(loop *compositor.EventLoop) {
	eventLoop = loop
}

// GetEventLoop returns the loop set with SetEventLoop, or nil
func GetEventLoop() *compositor.EventLoop {
	return eventLoop
}

// deviceRegistry holds the attached touchscreens for cleanup and listing
var deviceRegistry *devices.DeviceRegistry

// SetRegistry sets the global device registry.
// This should be called once at application startup.
func SetRegistry(registry *devices.DeviceRegistry) {
	deviceRegistry = registry
}

// GetRegistry returns the current device registry, or nil
func GetRegistry() *devices.DeviceRegistry {
	return deviceRegistry
}

// shutdownHook runs process cleanup on SIGINT/SIGTERM
var shutdownHook *devices.ShutdownHook

// SetShutdownHook sets the process shutdown hook long running commands
// register their cleanup with
func SetShutdownHook(hook *devices.ShutdownHook) {
	shutdownHook = hook
}

// GetShutdownHook returns the hook set with SetShutdownHook, or nil
func GetShutdownHook() *devices.ShutdownHook {
	return shutdownHook
}

// sleep waits between synthetic input steps; tests replace it to drive a
// manual clock instead
var sleep = time.Sleep

// call runs fn on the compositor goroutine and waits for it
func call(fn func(c *compositor.Compositor)) error {
	if eventLoop == nil {
		return errNoEventLoop
	}
	if err := eventLoop.Call(fn); err != nil {
		return fmt.Errorf("compositor call failed: %w", err)
	}
	return nil
}
