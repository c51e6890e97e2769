//go:build linux

package devices

import (
	"fmt"
	"path/filepath"
	"sort"
	"unsafe"

	evdev "github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"
)

// DefaultInputDir is where the kernel exposes evdev nodes
const DefaultInputDir = "/dev/input"

type inputAbsInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// ioctl request encoding, linux/ioctl.h
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
	iocRead      = 2
)

func evioCGAbs(axis int) uintptr {
	// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
	return uintptr(iocRead<<iocDirShift |
		uint32('E')<<iocTypeShift |
		uint32(0x40+axis)<<iocNRShift |
		uint32(unsafe.Sizeof(inputAbsInfo{}))<<iocSizeShift)
}

func axisRange(fd uintptr, axis int) (AxisRange, error) {
	var info inputAbsInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, evioCGAbs(axis), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return AxisRange{}, errno
	}
	return AxisRange{Min: info.Minimum, Max: info.Maximum}, nil
}

type evdevSource struct {
	dev *evdev.InputDevice
}

func (s *evdevSource) read() ([]rawEvent, error) {
	events, err := s.dev.Read()
	if err != nil {
		return nil, err
	}

	raw := make([]rawEvent, len(events))
	for i, ev := range events {
		raw[i] = rawEvent{Type: ev.Type, Code: ev.Code, Value: ev.Value}
	}
	return raw, nil
}

func (s *evdevSource) close() error {
	return s.dev.File.Close()
}

func probe(dev *evdev.InputDevice) (TouchScreenInfo, error) {
	fd := dev.File.Fd()

	x, err := axisRange(fd, evdev.ABS_MT_POSITION_X)
	if err != nil {
		return TouchScreenInfo{}, fmt.Errorf("failed to read x axis: %w", err)
	}
	y, err := axisRange(fd, evdev.ABS_MT_POSITION_Y)
	if err != nil {
		return TouchScreenInfo{}, fmt.Errorf("failed to read y axis: %w", err)
	}
	if !x.valid() || !y.valid() {
		return TouchScreenInfo{}, ErrNotTouchScreen
	}

	return TouchScreenInfo{Path: dev.Fn, Name: dev.Name, XRange: x, YRange: y}, nil
}

// OpenTouchScreen opens an evdev node and checks it has multitouch axes.
// Contacts are scaled to width x height; idBase offsets the touch ids.
func OpenTouchScreen(path string, width, height, idBase int32) (*TouchScreen, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	info, err := probe(dev)
	if err != nil {
		dev.File.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return newTouchScreen(info, &evdevSource{dev: dev}, width, height, idBase), nil
}

// ListTouchScreens returns every readable multitouch screen under dir
func ListTouchScreens(dir string) ([]TouchScreenInfo, error) {
	devs, err := evdev.ListInputDevices(filepath.Join(dir, "event*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}

	screens := make([]TouchScreenInfo, 0)
	for _, dev := range devs {
		info, err := probe(dev)
		dev.File.Close()
		if err != nil {
			continue
		}
		screens = append(screens, info)
	}

	sort.Slice(screens, func(i, j int) bool {
		return screens[i].Path < screens[j].Path
	})
	return screens, nil
}
