package compositor

import (
	"fmt"
	"sync"
	"time"

	"github.com/ruapotato/Flick-sub004/devices"
	"github.com/ruapotato/Flick-sub004/gesture"
	"github.com/ruapotato/Flick-sub004/shell"
	"github.com/ruapotato/Flick-sub004/utils"
	"github.com/sirupsen/logrus"
)

// PointerTouchID is the synthetic touch id used while the mouse button is held
const PointerTouchID int32 = 0

// Dispatch reports what a single input event did
type Dispatch struct {
	Event    gesture.Event `json:"event"`
	HasEvent bool          `json:"hasEvent"`
	// Consumed is false when the event should also go to the focused window
	Consumed    bool           `json:"consumed"`
	Action      gesture.Action `json:"action"`
	ViewChanged bool           `json:"viewChanged"`
}

// FrameInfo is what the renderer needs to draw one frame
type FrameInfo struct {
	Seq           uint64      `json:"seq"`
	Visual        shell.Color `json:"visual"`
	State         shell.State `json:"state"`
	Transitioning bool        `json:"transitioning"`
}

type NotificationKind string

const (
	KindGesture NotificationKind = "gesture"
	KindAction  NotificationKind = "action"
	KindView    NotificationKind = "view"
	KindFrame   NotificationKind = "frame"
	KindOutput  NotificationKind = "output"
)

// Notification is delivered to subscribers on the event loop goroutine
type Notification struct {
	Kind   NotificationKind `json:"kind"`
	Seq    uint64           `json:"seq"`
	Time   time.Time        `json:"time"`
	Event  *gesture.Event   `json:"event,omitempty"`
	Action gesture.Action   `json:"action,omitempty"`
	State  shell.State      `json:"state"`
	Visual *shell.Color     `json:"visual,omitempty"`
	Output *Output          `json:"output,omitempty"`
}

// Compositor owns the recognizer, the shell and the output and routes input
// between them. Apart from Subscribe it must only be used from one goroutine,
// normally the one running an EventLoop.
type Compositor struct {
	log   logrus.FieldLogger
	clock gesture.Clock

	output     Output
	recognizer *gesture.Recognizer
	shell      *shell.Shell
	history    *journal

	seq      uint64
	frameSeq uint64

	pointerDown bool

	// listeners may be registered from any goroutine
	mu           sync.Mutex
	listeners    map[int]func(Notification)
	nextListener int
}

type options struct {
	gesture     gesture.Config
	shell       []shell.Option
	clock       gesture.Clock
	historySize int
	log         logrus.FieldLogger
}

type Option func(*options)

func WithGestureConfig(cfg gesture.Config) Option {
	return func(o *options) {
		o.gesture = cfg
	}
}

func WithShellOptions(opts ...shell.Option) Option {
	return func(o *options) {
		o.shell = append(o.shell, opts...)
	}
}

// WithClock drives gesture timing from clock instead of the system clock
func WithClock(clock gesture.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func WithHistorySize(size int) Option {
	return func(o *options) {
		o.historySize = size
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// New builds a compositor for output
func New(output Output, opts ...Option) (*Compositor, error) {
	o := options{
		gesture:     gesture.DefaultConfig(),
		clock:       gesture.SystemClock{},
		historySize: DefaultHistorySize,
		log:         utils.Logger().WithField("component", "compositor"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.gesture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gesture config: %w", err)
	}

	history, err := newJournal(o.historySize)
	if err != nil {
		return nil, fmt.Errorf("failed to create gesture history: %w", err)
	}

	shellOpts := append([]shell.Option{shell.WithLogger(o.log.WithField("component", "shell"))}, o.shell...)

	recognizer := gesture.NewRecognizer(o.gesture, output.Width, output.Height,
		gesture.WithClock(o.clock),
		gesture.WithLogger(o.log.WithField("component", "gesture")),
	)

	c := &Compositor{
		log:        o.log,
		clock:      o.clock,
		output:     output,
		recognizer: recognizer,
		shell:      shell.New(shellOpts...),
		history:    history,
		listeners:  make(map[int]func(Notification)),
	}

	c.log.WithField("output", output.String()).Info("compositor ready")
	return c, nil
}

func (c *Compositor) Output() Output {
	return c.output
}

// SetOutput replaces the output mode and re-derives the edge bands
func (c *Compositor) SetOutput(output Output) {
	c.output = output
	c.recognizer.SetScreenSize(output.Width, output.Height)
	c.log.WithField("output", output.String()).Info("output mode changed")

	out := output
	c.notify(Notification{Kind: KindOutput, Output: &out})
}

func (c *Compositor) SetScreenSize(width, height int32) {
	output := c.output
	output.Width = width
	output.Height = height
	c.SetOutput(output)
}

func (c *Compositor) Recognizer() *gesture.Recognizer {
	return c.recognizer
}

func (c *Compositor) Shell() *shell.Shell {
	return c.shell
}

func (c *Compositor) State() shell.State {
	return c.shell.State()
}

func (c *Compositor) Visual() shell.Color {
	return c.shell.Visual()
}

// Subscribe registers fn for every notification. The returned function
// removes the subscription. fn runs on the event loop and must not block.
func (c *Compositor) Subscribe(fn func(Notification)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Compositor) notify(n Notification) {
	n.Time = c.clock.Now()
	n.State = c.shell.State()

	c.mu.Lock()
	fns := make([]func(Notification), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(n)
	}
}

// route hands a recognized event to the shell and journals it
func (c *Compositor) route(event gesture.Event, ok bool, before shell.View) Dispatch {
	d := Dispatch{Event: event, HasEvent: ok}
	if !ok {
		d.ViewChanged = c.viewCheck(before)
		return d
	}

	d.Consumed = c.shell.HandleGesture(event)

	c.seq++
	c.history.add(Record{
		Seq:      c.seq,
		Time:     c.clock.Now(),
		Event:    event,
		Consumed: d.Consumed,
		View:     c.shell.CurrentView(),
	})

	ev := event
	c.notify(Notification{Kind: KindGesture, Seq: c.seq, Event: &ev})
	d.ViewChanged = c.viewCheck(before)
	return d
}

func (c *Compositor) viewCheck(before shell.View) bool {
	if c.shell.CurrentView() == before {
		return false
	}
	c.notify(Notification{Kind: KindView, Seq: c.seq})
	return true
}

// takeover aborts a tracked shell gesture when a second finger turns the
// contact set into a multi-touch gesture
func (c *Compositor) takeover(wasMulti bool) {
	if !wasMulti && c.recognizer.MultiTouchActive() {
		c.shell.Abort()
	}
}

func (c *Compositor) TouchDown(id int32, x, y float64) Dispatch {
	before := c.shell.CurrentView()
	wasMulti := c.recognizer.MultiTouchActive()

	event, ok := c.recognizer.TouchDown(id, x, y)
	c.takeover(wasMulti)
	return c.route(event, ok, before)
}

func (c *Compositor) TouchMotion(id int32, x, y float64) Dispatch {
	before := c.shell.CurrentView()
	event, ok := c.recognizer.TouchMotion(id, x, y)
	return c.route(event, ok, before)
}

// TouchUp ends a contact; a terminal gesture is also mapped to an action
func (c *Compositor) TouchUp(id int32) Dispatch {
	before := c.shell.CurrentView()
	event, ok := c.recognizer.TouchUp(id)

	d := c.route(event, ok, before)
	if !ok {
		return d
	}

	action := gesture.ToAction(event)
	if action == gesture.ActionNone {
		return d
	}

	d.Action = action
	c.history.update(c.seq, func(r *Record) {
		r.Action = action
	})

	viewBefore := c.shell.CurrentView()
	c.shell.HandleAction(action)
	c.log.WithFields(logrus.Fields{"action": action, "view": c.shell.CurrentView()}).Debug("action dispatched")
	c.notify(Notification{Kind: KindAction, Seq: c.seq, Action: action})
	c.viewCheck(viewBefore)

	d.ViewChanged = c.shell.CurrentView() != before
	return d
}

// TouchCancel drops every contact and any gesture-driven transition
func (c *Compositor) TouchCancel() {
	c.recognizer.TouchCancel()
	if c.shell.Abort() {
		c.log.Debug("touch cancel aborted the shell transition")
	}
}

// Touch dispatches a decoded device event
func (c *Compositor) Touch(ev devices.TouchEvent) Dispatch {
	switch ev.Kind {
	case devices.TouchDown:
		return c.TouchDown(ev.ID, ev.X, ev.Y)
	case devices.TouchMotion:
		return c.TouchMotion(ev.ID, ev.X, ev.Y)
	case devices.TouchUp:
		return c.TouchUp(ev.ID)
	case devices.TouchCancel:
		c.TouchCancel()
	}
	return Dispatch{}
}

// PointerButton emulates a touch with the primary mouse button
func (c *Compositor) PointerButton(pressed bool, x, y float64) Dispatch {
	if pressed == c.pointerDown {
		return Dispatch{}
	}
	c.pointerDown = pressed

	if pressed {
		return c.TouchDown(PointerTouchID, x, y)
	}
	return c.TouchUp(PointerTouchID)
}

// PointerMotion only reaches the recognizer while the button is held
func (c *Compositor) PointerMotion(x, y float64) Dispatch {
	if !c.pointerDown {
		return Dispatch{}
	}
	return c.TouchMotion(PointerTouchID, x, y)
}

func (c *Compositor) HandleAction(action gesture.Action) bool {
	before := c.shell.CurrentView()
	changed := c.shell.HandleAction(action)
	if action != gesture.ActionNone {
		c.notify(Notification{Kind: KindAction, Seq: c.seq, Action: action})
	}
	c.viewCheck(before)
	return changed
}

func (c *Compositor) GoToView(v shell.View) bool {
	changed := c.shell.GoToView(v)
	if changed {
		c.notify(Notification{Kind: KindView, Seq: c.seq})
	}
	return changed
}

type Key int

const (
	KeyNone Key = iota
	KeySuper
)

// ParseKey accepts the key names understood by Key
func ParseKey(name string) (Key, error) {
	switch name {
	case "super", "meta":
		return KeySuper, nil
	}
	return KeyNone, fmt.Errorf("unknown key: %s", name)
}

// Key handles compositor keyboard shortcuts, returning false for keys that
// belong to the focused window
func (c *Compositor) Key(key Key) bool {
	switch key {
	case KeySuper:
		c.HandleAction(gesture.ActionGoHome)
		return true
	}
	return false
}

// Frame advances animations by delta and returns what to draw
func (c *Compositor) Frame(delta time.Duration) FrameInfo {
	before := c.shell.CurrentView()
	wasTransitioning := c.shell.IsTransitioning()

	c.shell.Update(delta)
	c.frameSeq++

	info := FrameInfo{
		Seq:           c.frameSeq,
		Visual:        c.shell.Visual(),
		State:         c.shell.State(),
		Transitioning: c.shell.IsTransitioning(),
	}

	if wasTransitioning || info.Transitioning {
		visual := info.Visual
		c.notify(Notification{Kind: KindFrame, Seq: c.frameSeq, Visual: &visual})
	}
	c.viewCheck(before)

	return info
}

// History returns up to n recent gesture records, newest first
func (c *Compositor) History(n int) []Record {
	return c.history.recent(n)
}

func (c *Compositor) ClearHistory() {
	c.history.clear()
}
