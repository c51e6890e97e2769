package devices

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource replays batches and then blocks until closed
type fakeSource struct {
	batches chan []rawEvent
	closed  chan struct{}
	once    sync.Once
	err     error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		batches: make(chan []rawEvent, 16),
		closed:  make(chan struct{}),
	}
}

func (f *fakeSource) read() ([]rawEvent, error) {
	select {
	case batch, ok := <-f.batches:
		if !ok {
			return nil, f.err
		}
		return batch, nil
	case <-f.closed:
		return nil, os.ErrClosed
	}
}

func (f *fakeSource) close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []TouchEvent
}

func (r *recordingSink) HandleTouch(ev TouchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) snapshot() []TouchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TouchEvent(nil), r.events...)
}

func testInfo(path string) TouchScreenInfo {
	return TouchScreenInfo{
		Path:   path,
		Name:   "test touchscreen",
		XRange: AxisRange{Min: 0, Max: 1000},
		YRange: AxisRange{Min: 0, Max: 2000},
	}
}

func TestTouchScreen_RunDeliversDecodedEvents(t *testing.T) {
	src := newFakeSource()
	ts := newTouchScreen(testInfo("/dev/input/event7"), src, 1000, 2000, 0)
	sink := &recordingSink{}

	src.batches <- []rawEvent{abs(absMTTrackingID, 1), abs(absMTPositionX, 40), abs(absMTPositionY, 1000), syn()}
	src.batches <- []rawEvent{abs(absMTPositionX, 340), syn()}
	src.batches <- []rawEvent{abs(absMTTrackingID, -1), syn()}

	done := make(chan error, 1)
	go func() { done <- ts.Run(context.Background(), sink) }()

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 3 }, time.Second, 5*time.Millisecond)

	require.NoError(t, ts.Close())
	require.NoError(t, <-done, "closing is a clean stop")

	events := sink.snapshot()
	assert.Equal(t, TouchEvent{Kind: TouchDown, ID: 1, X: 40, Y: 1000}, events[0])
	assert.Equal(t, TouchEvent{Kind: TouchMotion, ID: 1, X: 340, Y: 1000}, events[1])
	assert.Equal(t, TouchEvent{Kind: TouchUp, ID: 1}, events[2])
}

func TestTouchScreen_ReadErrorCancelsActiveContacts(t *testing.T) {
	src := newFakeSource()
	src.err = io.ErrUnexpectedEOF
	ts := newTouchScreen(testInfo("/dev/input/event3"), src, 1000, 2000, 0)
	sink := &recordingSink{}

	src.batches <- []rawEvent{abs(absMTTrackingID, 1), abs(absMTPositionX, 500), syn()}
	close(src.batches)

	err := ts.Run(context.Background(), sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	events := sink.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, TouchDown, events[0].Kind)
	assert.Equal(t, TouchCancel, events[1].Kind)
}

func TestTouchScreen_ContextStopsRun(t *testing.T) {
	src := newFakeSource()
	ts := newTouchScreen(testInfo("/dev/input/event1"), src, 1000, 2000, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.Run(ctx, &recordingSink{}) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDeviceRegistry(t *testing.T) {
	r := NewDeviceRegistry()

	a := newTouchScreen(testInfo("/dev/input/event2"), newFakeSource(), 1000, 2000, 0)
	b := newTouchScreen(testInfo("/dev/input/event1"), newFakeSource(), 1000, 2000, 0)
	dup := newTouchScreen(testInfo("/dev/input/event2"), newFakeSource(), 1000, 2000, 0)

	assert.True(t, r.Register(a))
	assert.True(t, r.Register(b))
	assert.False(t, r.Register(dup))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "/dev/input/event1", list[0].Path)

	assert.True(t, r.Remove("/dev/input/event1"))
	assert.False(t, r.Remove("/dev/input/event1"))

	r.CleanupAll()
	assert.Empty(t, r.List())
}

func TestDeviceRegistry_IDBaseStablePerPath(t *testing.T) {
	r := NewDeviceRegistry()

	first := r.IDBase("/dev/input/event4")
	second := r.IDBase("/dev/input/event5")
	assert.NotEqual(t, first, second)
	assert.Equal(t, first, r.IDBase("/dev/input/event4"))
	assert.GreaterOrEqual(t, second-first, int32(maxMTSlots))
}

func TestWatcher_AttachesAndDetaches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event0"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mouse0"), nil, 0o600))

	var mu sync.Mutex
	sources := map[string]*fakeSource{}
	open := func(path string, idBase int32) (*TouchScreen, error) {
		mu.Lock()
		defer mu.Unlock()
		src := newFakeSource()
		sources[path] = src
		return newTouchScreen(testInfo(path), src, 1000, 2000, idBase), nil
	}

	registry := NewDeviceRegistry()
	sink := &recordingSink{}
	w := NewWatcher(dir, registry, sink, open)
	w.SetSettleDelay(time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.Len(t, registry.List(), 1, "existing event nodes are attached")

	hotplugged := filepath.Join(dir, "event1")
	require.NoError(t, os.WriteFile(hotplugged, nil, 0o600))
	require.Eventually(t, func() bool { return len(registry.List()) == 2 }, 2*time.Second, 10*time.Millisecond)

	// a contact is down when the device goes away
	mu.Lock()
	src := sources[hotplugged]
	mu.Unlock()
	src.batches <- []rawEvent{abs(absMTTrackingID, 1), abs(absMTPositionX, 10), syn()}
	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, os.Remove(hotplugged))
	require.Eventually(t, func() bool { return len(registry.List()) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		events := sink.snapshot()
		return len(events) == 2 && events[1].Kind == TouchCancel
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Close())
	assert.Empty(t, registry.List())
}

func TestWatcher_OpenFailureSkipsDevice(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event0"), nil, 0o600))

	registry := NewDeviceRegistry()
	w := NewWatcher(dir, registry, &recordingSink{}, func(string, int32) (*TouchScreen, error) {
		return nil, errors.New("keyboard")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	assert.Empty(t, registry.List())
	require.NoError(t, w.Close())
}

func TestWatcher_CloseCancelsPendingAttach(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	opened := 0
	registry := NewDeviceRegistry()
	w := NewWatcher(dir, registry, &recordingSink{}, func(path string, idBase int32) (*TouchScreen, error) {
		mu.Lock()
		defer mu.Unlock()
		opened++
		return newTouchScreen(testInfo(path), newFakeSource(), 1000, 2000, idBase), nil
	})
	w.SetSettleDelay(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "event0"), nil, 0o600))
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.timers) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// the context is still live, as it is while the server's defers run
	require.NoError(t, w.Close())
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 0, opened)
	mu.Unlock()
	assert.Empty(t, registry.List())

	w.attach(ctx, filepath.Join(dir, "event0"))
	assert.Empty(t, registry.List(), "attach after Close is a no-op")
}
