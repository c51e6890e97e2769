//go:build linux

package devices

import evdev "github.com/gvalkov/golang-evdev"

// input event codes the multitouch decoder understands
const (
	evSyn = evdev.EV_SYN
	evAbs = evdev.EV_ABS

	synReport  = evdev.SYN_REPORT
	synDropped = evdev.SYN_DROPPED

	absMTSlot       = evdev.ABS_MT_SLOT
	absMTPositionX  = evdev.ABS_MT_POSITION_X
	absMTPositionY  = evdev.ABS_MT_POSITION_Y
	absMTTrackingID = evdev.ABS_MT_TRACKING_ID
)
