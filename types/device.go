package types

// TapAction types understood by the gesture command
const (
	TapActionPress   = "press"
	TapActionMove    = "move"
	TapActionRelease = "release"
	TapActionWait    = "wait"
)

// TapAction represents a single action in a gesture sequence.
// Button selects the finger for multi-contact gestures.
type TapAction struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Button   int    `json:"button"`
}

// Size represents width and height dimensions.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
