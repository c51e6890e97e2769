package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/devices"
	"github.com/ruapotato/Flick-sub004/types"
)

// SyntheticTouchID is the first touch id used for injected input. Gesture
// actions with a button index n use SyntheticTouchID - n.
const SyntheticTouchID int32 = -1

// syntheticMu serializes the commands that drive the synthetic touch ids, so
// overlapping requests cannot interleave on the same contact
var syntheticMu sync.Mutex

const (
	defaultLongPressDuration = 600 * time.Millisecond
	defaultSwipeDuration     = 300 * time.Millisecond
	swipeStepInterval        = 16 * time.Millisecond
)

// TouchRequest injects a single raw touch event
type TouchRequest struct {
	Kind string  `json:"kind"`
	ID   int32   `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// PointerRequest injects a mouse event; Button is "press", "release" or empty
// for motion
type PointerRequest struct {
	Button string  `json:"button,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// TapRequest represents the parameters for a tap command
type TapRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LongPressRequest represents the parameters for a long press command
type LongPressRequest struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Duration int     `json:"duration,omitempty"` // milliseconds
}

// SwipeRequest represents the parameters for a swipe command
type SwipeRequest struct {
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
	Duration int     `json:"duration,omitempty"` // milliseconds
}

// GestureRequest represents the parameters for a gesture command
type GestureRequest struct {
	Actions []interface{} `json:"actions"`
}

func validateCoordinates(x, y float64) error {
	if x < 0 || y < 0 {
		return fmt.Errorf("x and y coordinates must be non-negative, got x=%v, y=%v", x, y)
	}
	return nil
}

func dispatch(fn func(c *compositor.Compositor) compositor.Dispatch) (compositor.Dispatch, error) {
	var d compositor.Dispatch
	err := call(func(c *compositor.Compositor) {
		d = fn(c)
	})
	return d, err
}

// TouchCommand injects one down, motion, up or cancel event
func TouchCommand(req TouchRequest) *CommandResponse {
	kind, err := devices.ParseTouchKind(req.Kind)
	if err != nil {
		return NewErrorResponse(err)
	}

	d, err := dispatch(func(c *compositor.Compositor) compositor.Dispatch {
		return c.Touch(devices.TouchEvent{Kind: kind, ID: req.ID, X: req.X, Y: req.Y})
	})
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(d)
}

// PointerCommand injects mouse input, which drives touch id 0 while pressed
func PointerCommand(req PointerRequest) *CommandResponse {
	var fn func(c *compositor.Compositor) compositor.Dispatch

	switch req.Button {
	case "press":
		fn = func(c *compositor.Compositor) compositor.Dispatch { return c.PointerButton(true, req.X, req.Y) }
	case "release":
		fn = func(c *compositor.Compositor) compositor.Dispatch { return c.PointerButton(false, req.X, req.Y) }
	case "", "motion":
		fn = func(c *compositor.Compositor) compositor.Dispatch { return c.PointerMotion(req.X, req.Y) }
	default:
		return NewErrorResponse(fmt.Errorf("invalid pointer button '%s', expected press, release or motion", req.Button))
	}

	d, err := dispatch(fn)
	if err != nil {
		return NewErrorResponse(err)
	}
	return NewSuccessResponse(d)
}

// TapCommand injects a down and an immediate up at the given point
func TapCommand(req TapRequest) *CommandResponse {
	if err := validateCoordinates(req.X, req.Y); err != nil {
		return NewErrorResponse(err)
	}

	syntheticMu.Lock()
	defer syntheticMu.Unlock()

	d, err := dispatch(func(c *compositor.Compositor) compositor.Dispatch {
		c.TouchDown(SyntheticTouchID, req.X, req.Y)
		return c.TouchUp(SyntheticTouchID)
	})
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to tap: %v", err))
	}

	return NewSuccessResponse(d)
}

// LongPressCommand holds a contact still for the requested duration
func LongPressCommand(req LongPressRequest) *CommandResponse {
	if err := validateCoordinates(req.X, req.Y); err != nil {
		return NewErrorResponse(err)
	}

	syntheticMu.Lock()
	defer syntheticMu.Unlock()

	hold := defaultLongPressDuration
	if req.Duration > 0 {
		hold = time.Duration(req.Duration) * time.Millisecond
	}

	if _, err := dispatch(func(c *compositor.Compositor) compositor.Dispatch {
		return c.TouchDown(SyntheticTouchID, req.X, req.Y)
	}); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to long press: %v", err))
	}

	sleep(hold)

	d, err := dispatch(func(c *compositor.Compositor) compositor.Dispatch {
		return c.TouchUp(SyntheticTouchID)
	})
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to long press: %v", err))
	}

	return NewSuccessResponse(d)
}

// SwipeCommand moves a contact in a straight line from (x1,y1) to (x2,y2)
func SwipeCommand(req SwipeRequest) *CommandResponse {
	if err := validateCoordinates(req.X1, req.Y1); err != nil {
		return NewErrorResponse(err)
	}
	if err := validateCoordinates(req.X2, req.Y2); err != nil {
		return NewErrorResponse(err)
	}

	syntheticMu.Lock()
	defer syntheticMu.Unlock()

	duration := defaultSwipeDuration
	if req.Duration > 0 {
		duration = time.Duration(req.Duration) * time.Millisecond
	}

	steps := int(duration / swipeStepInterval)
	if steps < 1 {
		steps = 1
	}
	interval := duration / time.Duration(steps)

	if _, err := dispatch(func(c *compositor.Compositor) compositor.Dispatch {
		return c.TouchDown(SyntheticTouchID, req.X1, req.Y1)
	}); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to swipe: %v", err))
	}

	for i := 1; i <= steps; i++ {
		sleep(interval)
		t := float64(i) / float64(steps)
		x := req.X1 + (req.X2-req.X1)*t
		y := req.Y1 + (req.Y2-req.Y1)*t
		if _, err := dispatch(func(c *compositor.Compositor) compositor.Dispatch {
			return c.TouchMotion(SyntheticTouchID, x, y)
		}); err != nil {
			return NewErrorResponse(fmt.Errorf("failed to swipe: %v", err))
		}
	}

	d, err := dispatch(func(c *compositor.Compositor) compositor.Dispatch {
		return c.TouchUp(SyntheticTouchID)
	})
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to swipe: %v", err))
	}

	return NewSuccessResponse(d)
}

// parseTapActions converts loosely typed JSON actions to TapActions
func parseTapActions(actions []interface{}) ([]types.TapAction, error) {
	tapActions := make([]types.TapAction, len(actions))
	for i, action := range actions {
		actionBytes, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal action at index %d: %v", i, err)
		}

		var tapAction types.TapAction
		if err := json.Unmarshal(actionBytes, &tapAction); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action at index %d: %v", i, err)
		}
		tapActions[i] = tapAction
	}
	return tapActions, nil
}

// GestureCommand plays a press/move/release/wait sequence. Each action's
// button selects the finger, so several contacts can be held at once.
// Contacts still pressed when the sequence ends are released.
func GestureCommand(req GestureRequest) *CommandResponse {
	if len(req.Actions) == 0 {
		return NewErrorResponse(fmt.Errorf("actions array is required and cannot be empty"))
	}

	tapActions, err := parseTapActions(req.Actions)
	if err != nil {
		return NewErrorResponse(err)
	}
	for i, action := range tapActions {
		switch action.Type {
		case types.TapActionPress, types.TapActionMove, types.TapActionRelease, types.TapActionWait:
		default:
			return NewErrorResponse(fmt.Errorf("unknown action type '%s' at index %d", action.Type, i))
		}
	}

	syntheticMu.Lock()
	defer syntheticMu.Unlock()

	var dispatches []compositor.Dispatch
	pressed := make(map[int32]bool)

	for _, action := range tapActions {
		id := SyntheticTouchID - int32(action.Button)
		x, y := float64(action.X), float64(action.Y)

		var fn func(c *compositor.Compositor) compositor.Dispatch
		switch action.Type {
		case types.TapActionPress:
			pressed[id] = true
			fn = func(c *compositor.Compositor) compositor.Dispatch { return c.TouchDown(id, x, y) }
		case types.TapActionMove:
			if action.Duration > 0 {
				sleep(time.Duration(action.Duration) * time.Millisecond)
			}
			fn = func(c *compositor.Compositor) compositor.Dispatch { return c.TouchMotion(id, x, y) }
		case types.TapActionRelease:
			delete(pressed, id)
			fn = func(c *compositor.Compositor) compositor.Dispatch { return c.TouchUp(id) }
		case types.TapActionWait:
			sleep(time.Duration(action.Duration) * time.Millisecond)
			continue
		}

		d, err := dispatch(fn)
		if err != nil {
			releaseContacts(pressed)
			return NewErrorResponse(fmt.Errorf("failed to perform gesture: %v", err))
		}
		if d.HasEvent {
			dispatches = append(dispatches, d)
		}
	}

	dispatches = append(dispatches, releaseContacts(pressed)...)

	return NewSuccessResponse(map[string]interface{}{
		"message":    fmt.Sprintf("Performed gesture with %d actions", len(tapActions)),
		"dispatches": dispatches,
	})
}

// releaseContacts lifts every id still in pressed, in descending id order
func releaseContacts(pressed map[int32]bool) []compositor.Dispatch {
	if len(pressed) == 0 {
		return nil
	}
	ids := make([]int32, 0, len(pressed))
	for id := range pressed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	var dispatches []compositor.Dispatch
	for _, id := range ids {
		d, err := dispatch(func(c *compositor.Compositor) compositor.Dispatch { return c.TouchUp(id) })
		if err != nil {
			break
		}
		if d.HasEvent {
			dispatches = append(dispatches, d)
		}
		delete(pressed, id)
	}
	return dispatches
}
