package devices

import "fmt"

// TouchKind is the hardware touch signal a TouchEvent carries
type TouchKind int

const (
	TouchDown TouchKind = iota
	TouchMotion
	TouchUp
	TouchCancel
)

func (k TouchKind) String() string {
	switch k {
	case TouchDown:
		return "down"
	case TouchMotion:
		return "motion"
	case TouchUp:
		return "up"
	case TouchCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

func (k TouchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseTouchKind accepts the names produced by TouchKind.String
func ParseTouchKind(name string) (TouchKind, error) {
	switch name {
	case "down":
		return TouchDown, nil
	case "motion", "move":
		return TouchMotion, nil
	case "up":
		return TouchUp, nil
	case "cancel":
		return TouchCancel, nil
	}
	return TouchCancel, fmt.Errorf("unknown touch kind: %s", name)
}

// TouchEvent is one touch signal in output pixel coordinates. X and Y are
// unset for up and cancel.
type TouchEvent struct {
	Kind TouchKind `json:"kind"`
	ID   int32     `json:"id"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// TouchSink receives decoded touch events from input devices. Implementations
// must not block for long; devices call it from their read goroutine.
type TouchSink interface {
	HandleTouch(TouchEvent)
}

// TouchSinkFunc adapts a function to a TouchSink
type TouchSinkFunc func(TouchEvent)

func (f TouchSinkFunc) HandleTouch(ev TouchEvent) {
	f(ev)
}
