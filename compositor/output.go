package compositor

import (
	"fmt"
	"time"
)

const defaultRefreshHz = 60

// Output describes the display the shell is drawn on
type Output struct {
	Name      string `json:"name"`
	Width     int32  `json:"width"`
	Height    int32  `json:"height"`
	RefreshHz int    `json:"refreshHz"`
}

// FrameInterval is the time between frame callbacks, 60Hz when unknown
func (o Output) FrameInterval() time.Duration {
	hz := o.RefreshHz
	if hz <= 0 {
		hz = defaultRefreshHz
	}
	return time.Second / time.Duration(hz)
}

func (o Output) String() string {
	return fmt.Sprintf("%s %dx%d@%dHz", o.Name, o.Width, o.Height, o.RefreshHz)
}
