package server

import (
	"time"

	"github.com/ruapotato/Flick-sub004/commands"
	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/config"
	"github.com/ruapotato/Flick-sub004/eventlog"
	"github.com/ruapotato/Flick-sub004/utils"
)

// startEventLog records gestures, actions and view changes to the configured
// database. The returned function flushes pending entries and closes it.
func startEventLog(cfg *config.Config, loop *compositor.EventLoop) (func(), error) {
	store, err := eventlog.Open(cfg.History.Database)
	if err != nil {
		return nil, err
	}

	if days := cfg.History.RetentionDays; days > 0 {
		removed, err := store.Prune(time.Now().AddDate(0, 0, -days))
		if err != nil {
			utils.Warn("Failed to prune event log: %v", err)
		} else if removed > 0 {
			utils.Verbose("Pruned %d event log entries older than %d days", removed, days)
		}
	}

	recorder := eventlog.NewRecorder(store)

	var unsubscribe func()
	err = loop.Call(func(c *compositor.Compositor) {
		unsubscribe = c.Subscribe(recorder.Notify)
	})
	if err != nil {
		recorder.Close()
		store.Close()
		return nil, err
	}

	utils.Info("Recording gestures to %s", cfg.History.Database)

	stop := func() {
		unsubscribe()
		recorder.Close()
		if err := store.Close(); err != nil {
			utils.Warn("Failed to close event log: %v", err)
		}
	}

	if hook := commands.GetShutdownHook(); hook != nil {
		hook.Register("event log", func() error {
			recorder.Close()
			return nil
		})
	}
	return stop, nil
}
