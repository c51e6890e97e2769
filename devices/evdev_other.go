//go:build !linux

package devices

import (
	"errors"
	"runtime"
)

const DefaultInputDir = "/dev/input"

var errNoEvdev = errors.New("touchscreen input requires linux evdev, not available on " + runtime.GOOS)

func OpenTouchScreen(path string, width, height, idBase int32) (*TouchScreen, error) {
	return nil, errNoEvdev
}

func ListTouchScreens(dir string) ([]TouchScreenInfo, error) {
	return nil, errNoEvdev
}
