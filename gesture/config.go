package gesture

import (
	"fmt"
	"time"
)

// Config holds the recognizer thresholds. It is fixed once a Recognizer is built.
type Config struct {
	// EdgeThreshold is the width of the edge detection band in pixels
	EdgeThreshold float64 `json:"edgeThreshold"`
	// SwipeThreshold is the travel that maps to progress 1.0
	SwipeThreshold float64 `json:"swipeThreshold"`
	// SwipeCompleteThreshold is the travel needed to trigger the edge action
	SwipeCompleteThreshold float64 `json:"swipeCompleteThreshold"`
	// SwipeLongThreshold is the travel that makes a swipe "long"
	SwipeLongThreshold float64 `json:"swipeLongThreshold"`

	LongPress      time.Duration `json:"longPress"`
	TapMaxDuration time.Duration `json:"tapMaxDuration"`
	TapDistance    float64       `json:"tapDistance"`

	// FlickVelocity in pixels per second; faster edge swipes always complete
	FlickVelocity float64 `json:"flickVelocity"`
}

// DefaultConfig returns the thresholds the shell ships with
func DefaultConfig() Config {
	return Config{
		EdgeThreshold:          80,
		SwipeThreshold:         300,
		SwipeCompleteThreshold: 100,
		SwipeLongThreshold:     200,
		LongPress:              500 * time.Millisecond,
		TapMaxDuration:         200 * time.Millisecond,
		TapDistance:            10,
		FlickVelocity:          500,
	}
}

// Validate rejects thresholds that would make classification meaningless
func (c Config) Validate() error {
	distances := []struct {
		name  string
		value float64
	}{
		{"edge threshold", c.EdgeThreshold},
		{"swipe threshold", c.SwipeThreshold},
		{"swipe complete threshold", c.SwipeCompleteThreshold},
		{"swipe long threshold", c.SwipeLongThreshold},
		{"tap distance", c.TapDistance},
		{"flick velocity", c.FlickVelocity},
	}
	for _, d := range distances {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", d.name, d.value)
		}
	}

	if c.LongPress <= 0 {
		return fmt.Errorf("long press duration must be positive, got %v", c.LongPress)
	}
	if c.TapMaxDuration <= 0 {
		return fmt.Errorf("tap duration must be positive, got %v", c.TapMaxDuration)
	}

	return nil
}
