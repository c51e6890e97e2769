package devices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abs(code uint16, value int32) rawEvent {
	return rawEvent{Type: evAbs, Code: code, Value: value}
}

func syn() rawEvent {
	return rawEvent{Type: evSyn, Code: synReport}
}

func feedAll(d *mtDecoder, events ...rawEvent) []TouchEvent {
	var out []TouchEvent
	for _, ev := range events {
		out = append(out, d.feed(ev)...)
	}
	return out
}

// 0..4095 on both axes onto a 1000x2000 output
func newTestDecoder() *mtDecoder {
	r := AxisRange{Min: 0, Max: 4096}
	return newMTDecoder(r, r, 1000, 2000, 0)
}

func TestMTDecoder_SingleContact(t *testing.T) {
	d := newTestDecoder()

	out := feedAll(d,
		abs(absMTSlot, 0),
		abs(absMTTrackingID, 45),
		abs(absMTPositionX, 2048),
		abs(absMTPositionY, 1024),
	)
	assert.Empty(t, out, "nothing is reported before SYN_REPORT")

	out = d.feed(syn())
	require.Len(t, out, 1)
	assert.Equal(t, TouchEvent{Kind: TouchDown, ID: 1, X: 500, Y: 500}, out[0])

	out = feedAll(d, abs(absMTPositionX, 3072), syn())
	require.Len(t, out, 1)
	assert.Equal(t, TouchEvent{Kind: TouchMotion, ID: 1, X: 750, Y: 500}, out[0])

	out = feedAll(d, abs(absMTTrackingID, -1), syn())
	require.Len(t, out, 1)
	assert.Equal(t, TouchEvent{Kind: TouchUp, ID: 1}, out[0])
	assert.Equal(t, 0, d.activeContacts())
}

func TestMTDecoder_TwoSlots(t *testing.T) {
	d := newTestDecoder()

	out := feedAll(d,
		abs(absMTSlot, 0), abs(absMTTrackingID, 1), abs(absMTPositionX, 0), abs(absMTPositionY, 0),
		abs(absMTSlot, 1), abs(absMTTrackingID, 2), abs(absMTPositionX, 4096), abs(absMTPositionY, 4096),
		syn(),
	)
	require.Len(t, out, 2)
	assert.Equal(t, TouchEvent{Kind: TouchDown, ID: 1, X: 0, Y: 0}, out[0])
	assert.Equal(t, TouchEvent{Kind: TouchDown, ID: 2, X: 1000, Y: 2000}, out[1])
	assert.Equal(t, 2, d.activeContacts())

	// only the current slot moves, slot selection persists across reports
	out = feedAll(d, abs(absMTPositionY, 2048), syn())
	require.Len(t, out, 1)
	assert.Equal(t, int32(2), out[0].ID)
	assert.Equal(t, TouchMotion, out[0].Kind)
}

func TestMTDecoder_ReleaseBeforeNewContact(t *testing.T) {
	d := newTestDecoder()

	feedAll(d, abs(absMTSlot, 3), abs(absMTTrackingID, 10), abs(absMTPositionX, 100), abs(absMTPositionY, 100), syn())

	// a new tracking id on a busy slot replaces the contact
	out := feedAll(d, abs(absMTTrackingID, 11), abs(absMTPositionX, 200), syn())
	require.Len(t, out, 2)
	assert.Equal(t, TouchUp, out[0].Kind)
	assert.Equal(t, TouchDown, out[1].Kind)
	assert.Equal(t, out[0].ID, out[1].ID)
}

func TestMTDecoder_ContactWithinOneReport(t *testing.T) {
	d := newTestDecoder()

	out := feedAll(d, abs(absMTTrackingID, 7), abs(absMTPositionX, 10), abs(absMTTrackingID, -1), syn())
	require.Len(t, out, 2)
	assert.Equal(t, TouchDown, out[0].Kind)
	assert.Equal(t, TouchUp, out[1].Kind)
	assert.Equal(t, 0, d.activeContacts())
}

func TestMTDecoder_SynDropped(t *testing.T) {
	d := newTestDecoder()
	feedAll(d, abs(absMTTrackingID, 1), abs(absMTPositionX, 10), abs(absMTPositionY, 10), syn())

	out := d.feed(rawEvent{Type: evSyn, Code: synDropped})
	require.Len(t, out, 1)
	assert.Equal(t, TouchCancel, out[0].Kind)
	assert.Equal(t, 0, d.activeContacts())

	// everything up to the next report is discarded
	out = feedAll(d, abs(absMTTrackingID, 2), abs(absMTPositionX, 20), syn())
	assert.Empty(t, out)

	out = feedAll(d, abs(absMTTrackingID, 3), abs(absMTPositionX, 30), syn())
	require.Len(t, out, 1)
	assert.Equal(t, TouchDown, out[0].Kind)
}

func TestMTDecoder_OutOfRangeSlotIgnored(t *testing.T) {
	d := newTestDecoder()

	out := feedAll(d, abs(absMTSlot, 99), abs(absMTTrackingID, 1), abs(absMTPositionX, 10), syn())
	assert.Empty(t, out)
	assert.Equal(t, 0, d.activeContacts())
}

func TestMTDecoder_IDBaseAndRescale(t *testing.T) {
	r := AxisRange{Min: 0, Max: 100}
	d := newMTDecoder(r, r, 100, 100, 64)

	out := feedAll(d, abs(absMTTrackingID, 1), abs(absMTPositionX, 50), abs(absMTPositionY, 50), syn())
	require.Len(t, out, 1)
	assert.Equal(t, int32(65), out[0].ID)
	assert.Equal(t, 50.0, out[0].X)

	d.setOutputSize(200, 400)
	out = feedAll(d, abs(absMTPositionY, 25), syn())
	require.Len(t, out, 1)
	assert.Equal(t, 100.0, out[0].X)
	assert.Equal(t, 100.0, out[0].Y)
}

func TestAxisRange_InvalidPassesRawValue(t *testing.T) {
	assert.Equal(t, 42.0, AxisRange{}.scale(42, 1000))
	assert.Equal(t, 42.0, AxisRange{Min: 0, Max: 10}.scale(42, 0))
}

func TestParseTouchKind(t *testing.T) {
	for _, k := range []TouchKind{TouchDown, TouchMotion, TouchUp, TouchCancel} {
		parsed, err := ParseTouchKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseTouchKind("hover")
	assert.Error(t, err)
}
