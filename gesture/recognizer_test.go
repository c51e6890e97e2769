package gesture

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestRecognizer builds a 1000x2000 recognizer driven by a manual clock
func newTestRecognizer(t *testing.T) (*Recognizer, *ManualClock) {
	t.Helper()
	clock := NewManualClock(time.Unix(1000, 0))
	r := NewRecognizer(DefaultConfig(), 1000, 2000, WithClock(clock), WithLogger(quietLogger()))
	return r, clock
}

func TestTouchDown_EdgeDetection(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want Edge
	}{
		{"left", 40, 1000, EdgeLeft},
		{"right", 960, 1000, EdgeRight},
		{"top", 500, 30, EdgeTop},
		{"bottom", 500, 1990, EdgeBottom},
		{"left wins over top in the corner", 10, 10, EdgeLeft},
		{"band boundary is not an edge", 80, 1000, EdgeNone},
		{"center", 500, 1000, EdgeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRecognizer(t)

			event, ok := r.TouchDown(1, tt.x, tt.y)
			if tt.want == EdgeNone {
				assert.False(t, ok)
				tp, found := r.Point(1)
				require.True(t, found)
				assert.Equal(t, SlotPotentialTap, tp.State)
				return
			}

			require.True(t, ok)
			assert.Equal(t, TypeEdgeSwipeStart, event.Type)
			assert.Equal(t, tt.want, event.Edge)
			assert.Equal(t, Point{X: tt.x, Y: tt.y}, event.Position)
			assert.Equal(t, 1, event.Fingers)
		})
	}
}

func TestTap_WithinDurationAndDistance(t *testing.T) {
	r, clock := newTestRecognizer(t)

	_, ok := r.TouchDown(3, 500, 500)
	require.False(t, ok)

	clock.Advance(50 * time.Millisecond)
	_, ok = r.TouchMotion(3, 503, 502)
	assert.False(t, ok)

	clock.Advance(50 * time.Millisecond)
	event, ok := r.TouchUp(3)
	require.True(t, ok)
	assert.Equal(t, TypeTap, event.Type)
	assert.Equal(t, Point{X: 500, Y: 500}, event.Position, "tap is reported at the down position")
	assert.Equal(t, 0, r.ActiveCount())
}

func TestLongPress_HeldStill(t *testing.T) {
	r, clock := newTestRecognizer(t)

	r.TouchDown(1, 500, 500)
	clock.Advance(600 * time.Millisecond)

	event, ok := r.TouchUp(1)
	require.True(t, ok)
	assert.Equal(t, TypeLongPress, event.Type)
	assert.Equal(t, Point{X: 500, Y: 500}, event.Position)
}

func TestPress_BetweenTapAndLongPress(t *testing.T) {
	r, clock := newTestRecognizer(t)

	r.TouchDown(1, 500, 500)
	clock.Advance(300 * time.Millisecond)

	_, ok := r.TouchUp(1)
	assert.False(t, ok, "a 300ms still press is neither tap nor long press")
	assert.Equal(t, 0, r.ActiveCount())
}

func TestSwipe_ReclassifiedBeforeRelease(t *testing.T) {
	for _, hold := range []time.Duration{50 * time.Millisecond, 700 * time.Millisecond} {
		t.Run(hold.String(), func(t *testing.T) {
			r, clock := newTestRecognizer(t)

			r.TouchDown(1, 500, 500)
			clock.Advance(hold / 2)
			_, ok := r.TouchMotion(1, 520, 500)
			assert.False(t, ok)

			tp, _ := r.Point(1)
			assert.Equal(t, SlotSwipe, tp.State)

			// coming back near the start does not undo the reclassification
			r.TouchMotion(1, 501, 500)
			clock.Advance(hold / 2)
			_, ok = r.TouchUp(1)
			assert.False(t, ok)
		})
	}
}

func TestEdgeSwipe_ProgressTracksPenetration(t *testing.T) {
	r, clock := newTestRecognizer(t)

	r.TouchDown(1, 40, 1000)

	var last float64
	for _, x := range []float64{70, 100, 190, 340, 640} {
		clock.Advance(16 * time.Millisecond)
		event, ok := r.TouchMotion(1, x, 1000)
		require.True(t, ok)
		assert.Equal(t, TypeEdgeSwipeUpdate, event.Type)
		assert.InDelta(t, (x-40)/300, event.Progress, 1e-9)
		assert.GreaterOrEqual(t, event.Progress, last)
		last = event.Progress
	}
	assert.Greater(t, last, 1.0, "overscroll is reported beyond 1.0")

	// moving back out of the screen clamps at zero
	clock.Advance(16 * time.Millisecond)
	event, _ := r.TouchMotion(1, 10, 1000)
	assert.Equal(t, 0.0, event.Progress)
}

func TestEdgeSwipe_DirectionPerEdge(t *testing.T) {
	tests := []struct {
		edge         Edge
		downX, downY float64
		toX, toY     float64
	}{
		{EdgeLeft, 10, 1000, 160, 1000},
		{EdgeRight, 990, 1000, 840, 1000},
		{EdgeTop, 500, 10, 500, 160},
		{EdgeBottom, 500, 1990, 500, 1840},
	}

	for _, tt := range tests {
		t.Run(tt.edge.String(), func(t *testing.T) {
			r, clock := newTestRecognizer(t)

			start, ok := r.TouchDown(1, tt.downX, tt.downY)
			require.True(t, ok)
			require.Equal(t, tt.edge, start.Edge)

			clock.Advance(100 * time.Millisecond)
			event, ok := r.TouchMotion(1, tt.toX, tt.toY)
			require.True(t, ok)
			assert.InDelta(t, 0.5, event.Progress, 1e-9)
			assert.InDelta(t, 1500, event.Velocity, 1e-6, "150px in 100ms into the screen")
		})
	}
}

func TestLeftEdgeSwipe_Completes(t *testing.T) {
	r, clock := newTestRecognizer(t)

	start, ok := r.TouchDown(1, 40, 1000)
	require.True(t, ok)
	assert.Equal(t, EdgeLeft, start.Edge)

	clock.Advance(400 * time.Millisecond)
	update, ok := r.TouchMotion(1, 340, 1000)
	require.True(t, ok)
	assert.InDelta(t, 1.0, update.Progress, 1e-9)

	clock.Advance(100 * time.Millisecond)
	end, ok := r.TouchUp(1)
	require.True(t, ok)
	assert.Equal(t, TypeEdgeSwipeEnd, end.Type)
	assert.True(t, end.Completed)
	assert.True(t, end.IsLong)
	assert.InDelta(t, 300, end.Distance, 1e-9)
	assert.Equal(t, ActionQuickSettings, ToAction(end))
}

func TestShortLeftSwipe_Cancels(t *testing.T) {
	r, clock := newTestRecognizer(t)

	r.TouchDown(1, 40, 1000)
	clock.Advance(200 * time.Millisecond)
	r.TouchMotion(1, 90, 1000)
	clock.Advance(50 * time.Millisecond)

	end, ok := r.TouchUp(1)
	require.True(t, ok)
	assert.False(t, end.Completed)
	assert.False(t, end.IsLong)
	assert.InDelta(t, 50, end.Distance, 1e-9)
	assert.Equal(t, ActionNone, ToAction(end))
}

func TestFastFlick_OverridesDistance(t *testing.T) {
	r, clock := newTestRecognizer(t)

	start, ok := r.TouchDown(1, 500, 1990)
	require.True(t, ok)
	assert.Equal(t, EdgeBottom, start.Edge)

	clock.Advance(100 * time.Millisecond)
	update, ok := r.TouchMotion(1, 500, 1930)
	require.True(t, ok)
	assert.InDelta(t, 600, update.Velocity, 1e-6)

	end, ok := r.TouchUp(1)
	require.True(t, ok)
	assert.InDelta(t, 60, end.Distance, 1e-9)
	assert.True(t, end.Completed, "flick completes a short swipe")
	assert.True(t, end.IsLong, "flick counts as a long swipe")
	assert.Equal(t, ActionGoHome, ToAction(end))
}

func TestEdgeSwipe_ShortBottomSwipeShowsKeyboard(t *testing.T) {
	r, clock := newTestRecognizer(t)

	r.TouchDown(1, 500, 1990)
	clock.Advance(500 * time.Millisecond)
	r.TouchMotion(1, 500, 1840)
	end, ok := r.TouchUp(1)
	require.True(t, ok)

	assert.True(t, end.Completed)
	assert.False(t, end.IsLong)
	assert.Equal(t, ActionShowKeyboard, ToAction(end))
}

func TestEdgeSwipe_ReverseFlickDoesNotComplete(t *testing.T) {
	r, clock := newTestRecognizer(t)

	r.TouchDown(1, 500, 1990)
	clock.Advance(10 * time.Millisecond)
	// fast motion towards the edge, out of the screen
	r.TouchMotion(1, 500, 1999)

	end, ok := r.TouchUp(1)
	require.True(t, ok)
	assert.False(t, end.Completed)
}

func TestVelocity_MinimumSampleInterval(t *testing.T) {
	r, _ := newTestRecognizer(t)

	r.TouchDown(1, 500, 500)
	// same timestamp: dt is clamped to 1ms
	r.TouchMotion(1, 501, 500)

	tp, ok := r.Point(1)
	require.True(t, ok)
	assert.InDelta(t, 1000, tp.Velocity.X, 1e-6)
}

func TestMultiTouch_SecondFingerRetagsAll(t *testing.T) {
	r, clock := newTestRecognizer(t)

	r.TouchDown(1, 400, 1000)
	r.TouchDown(2, 600, 1000)
	assert.True(t, r.MultiTouchActive())

	for _, id := range []int32{1, 2} {
		tp, ok := r.Point(id)
		require.True(t, ok)
		assert.Equal(t, SlotMultiTouch, tp.State)
	}

	clock.Advance(50 * time.Millisecond)
	_, ok := r.TouchMotion(1, 450, 1000)
	assert.False(t, ok, "pinch and pan are not emitted")

	_, ok = r.TouchUp(1)
	assert.False(t, ok, "multi-touch fingers never tap")
	assert.True(t, r.MultiTouchActive(), "mode stays until the last finger lifts")

	r.TouchUp(2)
	assert.False(t, r.MultiTouchActive())
	assert.Equal(t, 0, r.ActiveCount())
}

func TestMultiTouch_EdgeSwipeInterrupted(t *testing.T) {
	r, _ := newTestRecognizer(t)

	_, ok := r.TouchDown(1, 40, 1000)
	require.True(t, ok)
	r.TouchDown(2, 500, 1000)

	tp, _ := r.Point(1)
	assert.Equal(t, SlotMultiTouch, tp.State)

	_, ok = r.TouchUp(1)
	assert.False(t, ok, "retagged edge swipe no longer ends")
}

func TestMultiTouch_EdgeSecondFingerKeepsEdgeSwipe(t *testing.T) {
	r, _ := newTestRecognizer(t)

	r.TouchDown(1, 500, 1000)
	event, ok := r.TouchDown(2, 990, 1000)
	require.True(t, ok)
	assert.Equal(t, EdgeRight, event.Edge)
	assert.Equal(t, 2, event.Fingers)
	assert.False(t, r.MultiTouchActive())
}

func TestTouchDown_SlotExhaustion(t *testing.T) {
	r, _ := newTestRecognizer(t)

	for i := int32(0); i < MaxTouchPoints; i++ {
		r.TouchDown(i, 300+float64(i), 1000)
	}
	assert.Equal(t, MaxTouchPoints, r.ActiveCount())

	_, ok := r.TouchDown(99, 500, 500)
	assert.False(t, ok)
	assert.Equal(t, MaxTouchPoints, r.ActiveCount())
	_, found := r.Point(99)
	assert.False(t, found, "dropped touch is not tracked")

	// stray events for the dropped id are ignored
	_, ok = r.TouchMotion(99, 600, 600)
	assert.False(t, ok)
	_, ok = r.TouchUp(99)
	assert.False(t, ok)
	assert.Equal(t, MaxTouchPoints, r.ActiveCount())
}

func TestTouchDown_DuplicateIDIgnored(t *testing.T) {
	r, _ := newTestRecognizer(t)

	r.TouchDown(5, 500, 500)
	r.TouchDown(5, 600, 600)
	assert.Equal(t, 1, r.ActiveCount())

	tp, _ := r.Point(5)
	assert.Equal(t, Point{X: 500, Y: 500}, tp.Start)
}

func TestUnknownID_NoOp(t *testing.T) {
	r, _ := newTestRecognizer(t)

	_, ok := r.TouchMotion(42, 1, 1)
	assert.False(t, ok)
	_, ok = r.TouchUp(42)
	assert.False(t, ok)
	assert.Equal(t, 0, r.ActiveCount())
}

func TestTouchCancel_Idempotent(t *testing.T) {
	r, _ := newTestRecognizer(t)

	r.TouchCancel()
	assert.Equal(t, 0, r.ActiveCount())

	r.TouchDown(1, 40, 1000)
	r.TouchDown(2, 500, 1000)
	r.TouchDown(3, 600, 1000)

	r.TouchCancel()
	assert.Equal(t, 0, r.ActiveCount())
	assert.False(t, r.MultiTouchActive())

	r.TouchCancel()
	assert.Equal(t, 0, r.ActiveCount())

	// freed ids are usable again and classify from scratch
	event, ok := r.TouchDown(1, 40, 1000)
	require.True(t, ok)
	assert.Equal(t, TypeEdgeSwipeStart, event.Type)
	assert.Equal(t, 1, event.Fingers)
}

func TestPairedDownUp_NoSlotLeak(t *testing.T) {
	r, clock := newTestRecognizer(t)

	positions := [][2]float64{{40, 1000}, {500, 500}, {990, 30}, {500, 1990}, {300, 300}}
	for round := 0; round < 5; round++ {
		for i, p := range positions {
			r.TouchDown(int32(i), p[0], p[1])
		}
		clock.Advance(30 * time.Millisecond)
		for i, p := range positions {
			r.TouchMotion(int32(i), p[0]+15, p[1]-15)
		}
		for i := range positions {
			r.TouchUp(int32(i))
		}
		assert.Equal(t, 0, r.ActiveCount())
		assert.False(t, r.MultiTouchActive())
	}
}

func TestSetScreenSize_RederivesBands(t *testing.T) {
	r, _ := newTestRecognizer(t)

	r.SetScreenSize(2000, 1000)
	event, ok := r.TouchDown(1, 1950, 500)
	require.True(t, ok)
	assert.Equal(t, EdgeRight, event.Edge)
}

func TestDegenerateScreen_DoesNotPanic(t *testing.T) {
	r, _ := newTestRecognizer(t)

	r.SetScreenSize(0, 0)
	_, ok := r.TouchDown(1, 0, 0)
	assert.False(t, ok, "no edge bands on a zero sized screen")

	r.SetScreenSize(-10, 100)
	event, ok := r.TouchDown(2, 50, 10)
	require.True(t, ok)
	assert.Equal(t, EdgeTop, event.Edge)

	// tiny screens clamp the band to a quarter of the dimension
	r.TouchCancel()
	r.SetScreenSize(100, 100)
	_, ok = r.TouchDown(3, 50, 50)
	assert.False(t, ok)
}
