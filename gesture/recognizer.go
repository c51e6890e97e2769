package gesture

import (
	"math"
	"time"

	"github.com/ruapotato/Flick-sub004/utils"
	"github.com/sirupsen/logrus"
)

// minSampleInterval keeps velocity finite when two samples share a timestamp
const minSampleInterval = time.Millisecond

// Recognizer turns per-finger touch streams into gesture events.
//
// It is driven from a single event loop; none of its methods may be called
// concurrently.
type Recognizer struct {
	config Config
	clock  Clock
	log    logrus.FieldLogger

	screenWidth  int32
	screenHeight int32

	// slots is a fixed arena indexed by slot, nil entries are free
	slots       [MaxTouchPoints]*TouchPoint
	activeCount int

	multiTouchActive     bool
	pinchInitialDistance float64
}

// Option customizes a Recognizer
type Option func(*Recognizer)

// WithClock replaces the monotonic clock used for durations and velocity
func WithClock(clock Clock) Option {
	return func(r *Recognizer) {
		r.clock = clock
	}
}

// WithLogger sets the logger used for classification traces
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Recognizer) {
		r.log = log
	}
}

// NewRecognizer creates a recognizer for a screen of the given size
func NewRecognizer(config Config, width, height int32, opts ...Option) *Recognizer {
	r := &Recognizer{
		config: config,
		clock:  SystemClock{},
		log:    utils.Logger().WithField("component", "gesture"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.screenWidth = width
	r.screenHeight = height

	r.log.WithFields(logrus.Fields{
		"width":  width,
		"height": height,
		"edge":   config.EdgeThreshold,
	}).Debug("gesture recognizer initialized")

	return r
}

// Config returns the thresholds the recognizer was built with
func (r *Recognizer) Config() Config {
	return r.config
}

// SetScreenSize updates the geometry used for edge detection
func (r *Recognizer) SetScreenSize(width, height int32) {
	r.screenWidth = width
	r.screenHeight = height
	r.log.WithFields(logrus.Fields{"width": width, "height": height}).Debug("gesture screen size updated")
}

// ScreenSize returns the current screen geometry
func (r *Recognizer) ScreenSize() (int32, int32) {
	return r.screenWidth, r.screenHeight
}

// ActiveCount is the number of contacts currently down
func (r *Recognizer) ActiveCount() int {
	return r.activeCount
}

// MultiTouchActive reports whether two or more fingers took over the gesture
func (r *Recognizer) MultiTouchActive() bool {
	return r.multiTouchActive
}

// Point returns a copy of the tracked state for an active touch id
func (r *Recognizer) Point(id int32) (TouchPoint, bool) {
	tp := r.find(id)
	if tp == nil {
		return TouchPoint{}, false
	}
	return *tp, true
}

func (r *Recognizer) find(id int32) *TouchPoint {
	for _, tp := range r.slots {
		if tp != nil && tp.ID == id {
			return tp
		}
	}
	return nil
}

func (r *Recognizer) freeSlot() int {
	for i, tp := range r.slots {
		if tp == nil {
			return i
		}
	}
	return -1
}

func (r *Recognizer) release(id int32) {
	for i, tp := range r.slots {
		if tp != nil && tp.ID == id {
			r.slots[i] = nil
			r.activeCount--
			break
		}
	}

	if r.activeCount == 0 {
		r.multiTouchActive = false
		r.pinchInitialDistance = 0
	}
}

// EdgeBands returns the effective edge band widths for the horizontal and
// vertical edges
func (r *Recognizer) EdgeBands() (float64, float64) {
	return r.edgeBand(r.screenWidth), r.edgeBand(r.screenHeight)
}

// edgeBand clamps the configured band to a quarter of the screen dimension
func (r *Recognizer) edgeBand(dimension int32) float64 {
	if dimension <= 0 {
		return 0
	}
	return math.Min(r.config.EdgeThreshold, float64(dimension)/4)
}

func (r *Recognizer) detectEdge(x, y float64) Edge {
	w, h := float64(r.screenWidth), float64(r.screenHeight)

	if band := r.edgeBand(r.screenWidth); band > 0 {
		if x < band {
			return EdgeLeft
		}
		if x > w-band {
			return EdgeRight
		}
	}

	if band := r.edgeBand(r.screenHeight); band > 0 {
		if y < band {
			return EdgeTop
		}
		if y > h-band {
			return EdgeBottom
		}
	}

	return EdgeNone
}

// inward returns the displacement and velocity measured into the screen from edge
func inward(edge Edge, delta, velocity Point) (float64, float64) {
	switch edge {
	case EdgeLeft:
		return delta.X, velocity.X
	case EdgeRight:
		return -delta.X, -velocity.X
	case EdgeTop:
		return delta.Y, velocity.Y
	case EdgeBottom:
		return -delta.Y, -velocity.Y
	}
	return 0, 0
}

// TouchDown registers a new contact. It returns an edge swipe start event when
// the contact lands inside an edge band.
func (r *Recognizer) TouchDown(id int32, x, y float64) (Event, bool) {
	if r.find(id) != nil {
		r.log.WithField("id", id).Warn("touch down for an id that is already down, ignoring")
		return Event{}, false
	}

	slot := r.freeSlot()
	if slot < 0 {
		r.log.WithFields(logrus.Fields{"id": id, "active": r.activeCount}).Warn("no free touch slot, dropping touch")
		return Event{}, false
	}

	now := r.clock.Now()
	pos := Point{X: x, Y: y}
	tp := &TouchPoint{
		ID:        id,
		Start:     pos,
		Current:   pos,
		StartTime: now,
		LastTime:  now,
	}
	r.slots[slot] = tp
	r.activeCount++

	if edge := r.detectEdge(x, y); edge != EdgeNone {
		tp.State = SlotEdgeSwipe
		tp.Edge = edge

		r.log.WithFields(logrus.Fields{"id": id, "x": x, "y": y, "edge": edge}).Debug("touch down: edge swipe")

		return Event{
			Type:     TypeEdgeSwipeStart,
			Position: pos,
			Edge:     edge,
			Fingers:  r.activeCount,
		}, true
	}

	tp.State = SlotPotentialTap
	r.log.WithFields(logrus.Fields{"id": id, "x": x, "y": y}).Debug("touch down: potential tap")

	if r.activeCount == 2 {
		r.multiTouchActive = true
		for _, other := range r.slots {
			if other != nil {
				other.State = SlotMultiTouch
			}
		}
		r.log.Debug("multi-touch mode activated")
	}

	return Event{}, false
}

// TouchMotion updates a contact and returns an edge swipe update for edge gestures
func (r *Recognizer) TouchMotion(id int32, x, y float64) (Event, bool) {
	tp := r.find(id)
	if tp == nil {
		return Event{}, false
	}

	now := r.clock.Now()
	dt := now.Sub(tp.LastTime)
	if dt < minSampleInterval {
		dt = minSampleInterval
	}

	pos := Point{X: x, Y: y}
	step := pos.Sub(tp.Current)
	tp.Velocity = Point{X: step.X / dt.Seconds(), Y: step.Y / dt.Seconds()}
	tp.Current = pos
	tp.LastTime = now

	switch tp.State {
	case SlotEdgeSwipe:
		travel, velocity := inward(tp.Edge, tp.Current.Sub(tp.Start), tp.Velocity)
		if velocity > tp.PeakVelocity {
			tp.PeakVelocity = velocity
		}

		progress := math.Max(0, travel/r.config.SwipeThreshold)

		return Event{
			Type:     TypeEdgeSwipeUpdate,
			Position: pos,
			Edge:     tp.Edge,
			Progress: progress,
			Velocity: velocity,
			Distance: tp.Distance(),
			Fingers:  r.activeCount,
		}, true

	case SlotPotentialTap:
		if distance := tp.Distance(); distance > r.config.TapDistance {
			tp.State = SlotSwipe
			r.log.WithFields(logrus.Fields{"id": id, "distance": distance}).Debug("touch reclassified: tap -> swipe")
		}

	case SlotMultiTouch:
		// pinch and pan are not recognized yet
	}

	return Event{}, false
}

// TouchUp ends a contact and returns the terminal gesture event, if any
func (r *Recognizer) TouchUp(id int32) (Event, bool) {
	tp := r.find(id)
	if tp == nil {
		return Event{}, false
	}
	defer r.release(id)

	duration := r.clock.Now().Sub(tp.StartTime)
	distance := tp.Distance()

	switch tp.State {
	case SlotEdgeSwipe:
		completed := distance > r.config.SwipeCompleteThreshold
		isLong := distance > r.config.SwipeLongThreshold

		// a fast flick completes and counts as long regardless of travel
		if tp.PeakVelocity > r.config.FlickVelocity {
			completed = true
			isLong = true
		}

		travel, _ := inward(tp.Edge, tp.Current.Sub(tp.Start), Point{})

		r.log.WithFields(logrus.Fields{
			"edge":      tp.Edge,
			"distance":  distance,
			"velocity":  tp.PeakVelocity,
			"completed": completed,
			"long":      isLong,
		}).Info("edge swipe end")

		return Event{
			Type:      TypeEdgeSwipeEnd,
			Position:  tp.Current,
			Edge:      tp.Edge,
			Progress:  math.Max(0, travel/r.config.SwipeThreshold),
			Velocity:  tp.PeakVelocity,
			Completed: completed,
			IsLong:    isLong,
			Distance:  distance,
			Fingers:   r.activeCount,
		}, true

	case SlotPotentialTap:
		if distance >= r.config.TapDistance {
			break
		}

		if duration < r.config.TapMaxDuration {
			r.log.WithFields(logrus.Fields{"x": tp.Start.X, "y": tp.Start.Y}).Info("tap")
			return Event{Type: TypeTap, Position: tp.Start, Distance: distance, Fingers: r.activeCount}, true
		}

		if duration >= r.config.LongPress {
			r.log.WithFields(logrus.Fields{"x": tp.Start.X, "y": tp.Start.Y, "duration": duration}).Info("long press")
			return Event{Type: TypeLongPress, Position: tp.Start, Distance: distance, Fingers: r.activeCount}, true
		}

		r.log.WithFields(logrus.Fields{"id": id, "duration": duration}).Debug("press too long for a tap, too short for a long press")
	}

	return Event{}, false
}

// TouchCancel abandons every tracked contact without emitting events
func (r *Recognizer) TouchCancel() {
	if r.activeCount > 0 {
		r.log.WithField("active", r.activeCount).Debug("touch cancelled, clearing all state")
	}

	for i := range r.slots {
		r.slots[i] = nil
	}
	r.activeCount = 0
	r.multiTouchActive = false
	r.pinchInitialDistance = 0
}
