package devices

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ruapotato/Flick-sub004/utils"
	"github.com/sirupsen/logrus"
)

// udev fixes node permissions shortly after the kernel creates the node
const defaultSettleDelay = 200 * time.Millisecond

// Opener opens the touchscreen at path with the given touch id base
type Opener func(path string, idBase int32) (*TouchScreen, error)

// Watcher attaches touchscreens found in an input directory and follows
// hotplug events for as long as it runs
type Watcher struct {
	dir      string
	registry *DeviceRegistry
	sink     TouchSink
	open     Opener
	settle   time.Duration
	log      logrus.FieldLogger

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
	timers map[*time.Timer]struct{}
}

func NewWatcher(dir string, registry *DeviceRegistry, sink TouchSink, open Opener) *Watcher {
	return &Watcher{
		dir:      dir,
		registry: registry,
		sink:     sink,
		open:     open,
		settle:   defaultSettleDelay,
		timers:   make(map[*time.Timer]struct{}),
		log:      utils.Logger().WithFields(logrus.Fields{"component": "hotplug", "dir": dir}),
	}
}

// SetSettleDelay changes how long a new node is given before it is opened
func (w *Watcher) SetSettleDelay(d time.Duration) {
	w.settle = d
}

func isEventNode(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "event")
}

// Start attaches the devices already present and begins watching the
// directory. Devices are detached when ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	w.watcher = watcher

	existing, err := filepath.Glob(filepath.Join(w.dir, "event*"))
	if err != nil {
		watcher.Close()
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}
	for _, path := range existing {
		w.attach(ctx, path)
	}

	w.wg.Add(1)
	go w.watchLoop(ctx)
	return nil
}

// attach opens path and starts its reader. It does nothing once Close has
// started.
func (w *Watcher) attach(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || ctx.Err() != nil {
		return
	}
	if _, ok := w.registry.Get(path); ok {
		return
	}

	ts, err := w.open(path, w.registry.IDBase(path))
	if err != nil {
		w.log.WithError(err).WithField("device", path).Debug("skipping input device")
		return
	}
	if !w.registry.Register(ts) {
		ts.Close()
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := ts.Run(ctx, w.sink); err != nil {
			w.log.WithError(err).WithField("device", path).Warn("touchscreen read failed")
		}
		w.registry.Remove(path)
	}()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isEventNode(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Create != 0:
				path := event.Name
				w.log.WithField("device", path).Debug("input node created")
				w.attachLater(ctx, path)

			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if w.registry.Remove(event.Name) {
					w.log.WithField("device", event.Name).Info("touchscreen detached")
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("hotplug watch error")
		}
	}
}

func (w *Watcher) attachLater(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.timers, timer)
		w.mu.Unlock()
		w.attach(ctx, path)
	})
	w.timers[timer] = struct{}{}
}

// Close stops watching and waits for every device reader to finish. Pending
// attaches are cancelled.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	for timer := range w.timers {
		timer.Stop()
		delete(w.timers, timer)
	}
	w.mu.Unlock()

	var err error
	if w.watcher != nil {
		err = w.watcher.Close()
	}
	w.registry.CleanupAll()
	w.wg.Wait()
	return err
}
