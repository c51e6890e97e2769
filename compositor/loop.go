package compositor

import (
	"context"
	"errors"
	"time"

	"github.com/ruapotato/Flick-sub004/devices"
)

// ErrLoopStopped is returned when work is submitted to a loop that is not running
var ErrLoopStopped = errors.New("event loop is not running")

const taskQueueSize = 256

// EventLoop serializes every access to a Compositor onto one goroutine and
// drives frames at the output refresh rate
type EventLoop struct {
	c     *Compositor
	tasks chan func(*Compositor)
	done  chan struct{}
	ready chan struct{}
}

func NewEventLoop(c *Compositor) *EventLoop {
	return &EventLoop{
		c:     c,
		tasks: make(chan func(*Compositor), taskQueueSize),
		done:  make(chan struct{}),
		ready: make(chan struct{}),
	}
}

// Run processes tasks and frame ticks until ctx is cancelled. A loop can only
// be run once.
func (l *EventLoop) Run(ctx context.Context) error {
	interval := l.c.Output().FrameInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(l.done)

	l.c.log.WithField("interval", interval).Info("event loop started")
	close(l.ready)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.c.log.Info("event loop stopped")
			return ctx.Err()

		case task := <-l.tasks:
			task(l.c)
			if next := l.c.Output().FrameInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}

		case now := <-ticker.C:
			l.c.Frame(now.Sub(last))
			last = now
		}
	}
}

// Ready is closed once Run has started
func (l *EventLoop) Ready() <-chan struct{} {
	return l.ready
}

// Done is closed when Run returns
func (l *EventLoop) Done() <-chan struct{} {
	return l.done
}

// Post queues fn without waiting for it to run
func (l *EventLoop) Post(fn func(*Compositor)) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopStopped
	}
}

// Call runs fn on the loop and waits for it to finish
func (l *EventLoop) Call(fn func(*Compositor)) error {
	finished := make(chan struct{})
	err := l.Post(func(c *Compositor) {
		defer close(finished)
		fn(c)
	})
	if err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	}
}

// HandleTouch makes the loop a devices.TouchSink; events are queued in order
func (l *EventLoop) HandleTouch(ev devices.TouchEvent) {
	if err := l.Post(func(c *Compositor) { c.Touch(ev) }); err != nil {
		l.c.log.WithField("event", ev.Kind).Debug("touch event dropped, loop stopped")
	}
}

var _ devices.TouchSink = (*EventLoop)(nil)
