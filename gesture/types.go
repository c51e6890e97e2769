package gesture

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxTouchPoints is the number of concurrent contacts the recognizer tracks
const MaxTouchPoints = 10

// Edge identifies the screen edge a gesture originates from
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// MarshalText lets edges appear by name in JSON output
func (e Edge) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// ParseEdge converts an edge name back to an Edge
func ParseEdge(name string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return EdgeNone, nil
	case "left":
		return EdgeLeft, nil
	case "right":
		return EdgeRight, nil
	case "top":
		return EdgeTop, nil
	case "bottom":
		return EdgeBottom, nil
	}
	return EdgeNone, fmt.Errorf("unknown edge: %s", name)
}

// Type is the kind of a classified gesture step
type Type int

const (
	TypeNone Type = iota
	TypeTap
	TypeLongPress
	TypeEdgeSwipeStart
	TypeEdgeSwipeUpdate
	TypeEdgeSwipeEnd
	// TypePinch and TypePan are reserved, the recognizer never emits them
	TypePinch
	TypePan
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeTap:
		return "tap"
	case TypeLongPress:
		return "long_press"
	case TypeEdgeSwipeStart:
		return "edge_swipe_start"
	case TypeEdgeSwipeUpdate:
		return "edge_swipe_update"
	case TypeEdgeSwipeEnd:
		return "edge_swipe_end"
	case TypePinch:
		return "pinch"
	case TypePan:
		return "pan"
	default:
		return "unknown"
	}
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseType converts a name produced by Type.String back to a Type
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t := TypeNone; t <= TypePan; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("unknown gesture type: %s", name)
}

// Action is what the shell should do in response to a completed gesture
type Action int

const (
	ActionNone Action = iota
	ActionGoHome
	ActionShowKeyboard
	ActionCloseApp
	ActionQuickSettings
	ActionAppSwitcher
	ActionTap
	ActionLongPress
)

var actionNames = map[Action]string{
	ActionNone:          "none",
	ActionGoHome:        "go_home",
	ActionShowKeyboard:  "show_keyboard",
	ActionCloseApp:      "close_app",
	ActionQuickSettings: "quick_settings",
	ActionAppSwitcher:   "app_switcher",
	ActionTap:           "tap",
	ActionLongPress:     "long_press",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ParseAction converts an action name (as produced by String) to an Action
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for action, n := range actionNames {
		if n == name {
			return action, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action: %s", name)
}

// SlotState is the classification of a single contact
type SlotState int

const (
	SlotNone SlotState = iota
	SlotPotentialTap
	SlotLongPress
	SlotEdgeSwipe
	SlotSwipe
	SlotMultiTouch
)

func (s SlotState) String() string {
	switch s {
	case SlotNone:
		return "none"
	case SlotPotentialTap:
		return "potential_tap"
	case SlotLongPress:
		return "long_press"
	case SlotEdgeSwipe:
		return "edge_swipe"
	case SlotSwipe:
		return "swipe"
	case SlotMultiTouch:
		return "multi_touch"
	default:
		return "unknown"
	}
}

// Point is a position or velocity in output pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Len returns the euclidean length of p
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// TouchPoint is the tracked state of one active contact
type TouchPoint struct {
	ID       int32
	Start    Point
	Current  Point
	Velocity Point
	// PeakVelocity is the fastest into-screen velocity seen for an edge swipe
	PeakVelocity float64

	StartTime time.Time
	LastTime  time.Time

	State SlotState
	Edge  Edge
}

// Distance is how far the contact travelled from where it went down
func (tp *TouchPoint) Distance() float64 {
	return tp.Current.Sub(tp.Start).Len()
}

// Event is one classified gesture step
type Event struct {
	Type     Type    `json:"type"`
	Position Point   `json:"position"`
	Edge     Edge    `json:"edge"`
	Progress float64 `json:"progress"`
	Velocity float64 `json:"velocity"`
	// Completed is set on edge swipe end when the swipe went far or fast enough
	Completed bool    `json:"completed"`
	IsLong    bool    `json:"isLong"`
	Distance  float64 `json:"distance"`
	Fingers   int     `json:"fingers"`
}
