package devices

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ruapotato/Flick-sub004/utils"
)

// ShutdownHook runs cleanup for the process on SIGINT/SIGTERM or when the
// server stops. Hooks run in reverse registration order, so the last thing
// started is the first thing stopped.
type ShutdownHook struct {
	mu    sync.Mutex
	hooks []namedHook
	done  bool
}

type namedHook struct {
	name string
	fn   func() error
}

func NewShutdownHook() *ShutdownHook {
	return &ShutdownHook{}
}

// Register adds a cleanup function. Registering after Shutdown runs the
// function immediately.
func (s *ShutdownHook) Register(name string, cleanupFn func() error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		utils.Verbose("Shutdown already ran, cleaning up %s now", name)
		if err := cleanupFn(); err != nil {
			utils.Warn("Late shutdown hook %s failed: %v", name, err)
		}
		return
	}
	s.hooks = append(s.hooks, namedHook{name: name, fn: cleanupFn})
	s.mu.Unlock()
	utils.Verbose("Registered shutdown hook: %s", name)
}

// Shutdown runs every hook once. A failing hook does not stop the others;
// their errors are joined.
func (s *ShutdownHook) Shutdown() error {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.done = true
	s.mu.Unlock()

	if len(hooks) == 0 {
		return nil
	}

	utils.Verbose("Executing %d shutdown hook(s)", len(hooks))
	var errs []error

	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		utils.Verbose("Running shutdown hook: %s", hook.name)
		if err := hook.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown failed with %d error(s): %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// Count returns the number of hooks still pending
func (s *ShutdownHook) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hooks)
}
