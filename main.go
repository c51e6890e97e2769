package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ruapotato/Flick-sub004/cli"
	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/ruapotato/Flick-sub004/devices"
	"github.com/ruapotato/Flick-sub004/server"
)

func main() {
	// registry of attached touchscreens, and the cleanup to run on exit
	registry := devices.NewDeviceRegistry()
	commands.SetRegistry(registry)
	hook := devices.NewShutdownHook()
	commands.SetShutdownHook(hook)

	// setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// run command in goroutine
	done := make(chan error, 1)
	go func() {
		done <- cli.Execute()
	}()

	// wait for command completion or signal
	select {
	case <-sigChan:
		if err := hook.Shutdown(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}

		// give a running server the chance to drain its connections
		select {
		case <-done:
		case <-time.After(server.ShutdownTimeout + time.Second):
		}
		registry.CleanupAll()
		os.Exit(0)
	case err := <-done:
		_ = hook.Shutdown()
		registry.CleanupAll()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
