package shell

import (
	"fmt"
	"strings"

	"github.com/ruapotato/Flick-sub004/gesture"
)

// View is the top-level screen the shell is showing
type View int

const (
	ViewLock View = iota
	ViewHome
	ViewApp
	ViewAppSwitcher
	ViewQuickSettings
)

var viewNames = map[View]string{
	ViewLock:          "lock",
	ViewHome:          "home",
	ViewApp:           "app",
	ViewAppSwitcher:   "app_switcher",
	ViewQuickSettings: "quick_settings",
}

func (v View) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return "unknown"
}

func (v View) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseView accepts the names produced by View.String
func ParseView(name string) (View, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for view, n := range viewNames {
		if n == name {
			return view, nil
		}
	}
	return ViewHome, fmt.Errorf("unknown view: %s", name)
}

// TransitionState is the phase of a view transition
type TransitionState int

const (
	TransitionNone TransitionState = iota
	TransitionStarting
	TransitionAnimating
	TransitionCanceling
)

func (t TransitionState) String() string {
	switch t {
	case TransitionNone:
		return "none"
	case TransitionStarting:
		return "starting"
	case TransitionAnimating:
		return "animating"
	case TransitionCanceling:
		return "canceling"
	default:
		return "unknown"
	}
}

func (t TransitionState) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// TransitionTarget returns the view an edge swipe from current leads to.
// Combinations without a transition return current unchanged; the lock view
// has no edge transitions at all.
func TransitionTarget(current View, edge gesture.Edge) View {
	switch current {
	case ViewApp:
		switch edge {
		case gesture.EdgeBottom, gesture.EdgeTop:
			return ViewHome
		case gesture.EdgeLeft:
			return ViewQuickSettings
		case gesture.EdgeRight:
			return ViewAppSwitcher
		}

	case ViewHome:
		switch edge {
		case gesture.EdgeLeft:
			return ViewQuickSettings
		case gesture.EdgeRight:
			return ViewAppSwitcher
		}

	case ViewQuickSettings:
		if edge == gesture.EdgeRight || edge == gesture.EdgeBottom {
			return ViewHome
		}

	case ViewAppSwitcher:
		if edge == gesture.EdgeLeft || edge == gesture.EdgeBottom {
			return ViewHome
		}
	}

	return current
}
