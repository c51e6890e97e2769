package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/config"
	"github.com/ruapotato/Flick-sub004/devices"
	"github.com/ruapotato/Flick-sub004/utils"
)

// startInput attaches touchscreens to the event loop and follows hotplug.
// The returned function detaches every device.
func startInput(ctx context.Context, cfg *config.Config, loop *compositor.EventLoop) (func(), error) {
	registry := commands.GetRegistry()
	if registry == nil {
		registry = devices.NewDeviceRegistry()
		commands.SetRegistry(registry)
	}

	allowed := make(map[string]bool, len(cfg.Input.Devices))
	for _, path := range cfg.Input.Devices {
		allowed[path] = true
	}

	// size tracks the output mode for devices plugged in later
	var sizeMu sync.Mutex
	width, height := int32(cfg.Output.Width), int32(cfg.Output.Height)

	open := func(path string, idBase int32) (*devices.TouchScreen, error) {
		if len(allowed) > 0 && !allowed[path] {
			return nil, fmt.Errorf("%s is not in the configured input devices", path)
		}
		sizeMu.Lock()
		w, h := width, height
		sizeMu.Unlock()
		return devices.OpenTouchScreen(path, w, h, idBase)
	}

	watcher := devices.NewWatcher(cfg.Input.Dir, registry, loop, open)
	if err := watcher.Start(ctx); err != nil {
		return nil, err
	}

	// touch coordinates follow output mode changes
	var unsubscribe func()
	err := loop.Call(func(c *compositor.Compositor) {
		unsubscribe = c.Subscribe(func(n compositor.Notification) {
			if n.Kind == compositor.KindOutput && n.Output != nil {
				sizeMu.Lock()
				width, height = n.Output.Width, n.Output.Height
				sizeMu.Unlock()
				registry.SetOutputSize(n.Output.Width, n.Output.Height)
			}
		})
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}

	utils.Info("Watching %s for touchscreens, %d attached", cfg.Input.Dir, len(registry.List()))

	stop := func() {
		unsubscribe()
		if err := watcher.Close(); err != nil {
			utils.Warn("Failed to stop input watcher: %v", err)
		}
	}

	if hook := commands.GetShutdownHook(); hook != nil {
		hook.Register("touch input", func() error {
			return watcher.Close()
		})
	}
	return stop, nil
}
