//go:build !linux

package devices

// from linux/input-event-codes.h, so replayed and recorded streams decode
// off linux too
const (
	evSyn = 0x00
	evAbs = 0x03

	synReport  = 0
	synDropped = 3

	absMTSlot       = 0x2f
	absMTPositionX  = 0x35
	absMTPositionY  = 0x36
	absMTTrackingID = 0x39
)
