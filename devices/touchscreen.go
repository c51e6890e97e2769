package devices

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ruapotato/Flick-sub004/utils"
	"github.com/sirupsen/logrus"
)

// ErrNotTouchScreen is returned when a device has no multitouch axes
var ErrNotTouchScreen = errors.New("device is not a multitouch screen")

// TouchScreenInfo describes an attached touchscreen
type TouchScreenInfo struct {
	Path   string    `json:"path"`
	Name   string    `json:"name"`
	XRange AxisRange `json:"xRange"`
	YRange AxisRange `json:"yRange"`
}

// eventSource is the kernel side of a touchscreen
type eventSource interface {
	read() ([]rawEvent, error)
	close() error
}

// TouchScreen reads one multitouch device and feeds decoded events to a sink
type TouchScreen struct {
	info TouchScreenInfo
	src  eventSource
	log  logrus.FieldLogger

	mu      sync.Mutex
	decoder *mtDecoder

	closeOnce sync.Once
	closed    chan struct{}
}

func newTouchScreen(info TouchScreenInfo, src eventSource, width, height, idBase int32) *TouchScreen {
	return &TouchScreen{
		info:    info,
		src:     src,
		log:     utils.Logger().WithFields(logrus.Fields{"component": "touchscreen", "device": info.Path}),
		decoder: newMTDecoder(info.XRange, info.YRange, width, height, idBase),
		closed:  make(chan struct{}),
	}
}

func (t *TouchScreen) Info() TouchScreenInfo {
	return t.info
}

func (t *TouchScreen) Path() string {
	return t.info.Path
}

// SetOutputSize changes the pixel space contacts are scaled to
func (t *TouchScreen) SetOutputSize(width, height int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.decoder.setOutputSize(width, height)
}

// Run reads events until the device is closed, fails, or ctx is done. A
// device that disappears with contacts down reports a cancel first.
func (t *TouchScreen) Run(ctx context.Context, sink TouchSink) error {
	go func() {
		select {
		case <-ctx.Done():
			t.Close()
		case <-t.closed:
		}
	}()

	t.log.WithField("name", t.info.Name).Info("touchscreen attached")

	for {
		events, err := t.src.read()
		if err != nil {
			t.mu.Lock()
			active := t.decoder.activeContacts()
			t.decoder.reset()
			t.mu.Unlock()

			if active > 0 {
				sink.HandleTouch(TouchEvent{Kind: TouchCancel})
			}

			select {
			case <-t.closed:
				return nil
			default:
			}
			return fmt.Errorf("failed to read %s: %w", t.info.Path, err)
		}

		t.mu.Lock()
		var decoded []TouchEvent
		for _, ev := range events {
			decoded = append(decoded, t.decoder.feed(ev)...)
		}
		t.mu.Unlock()

		for _, ev := range decoded {
			sink.HandleTouch(ev)
		}
	}
}

func (t *TouchScreen) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		err = t.src.close()
		t.log.Info("touchscreen closed")
	})
	return err
}
