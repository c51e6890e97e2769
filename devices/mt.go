package devices

// maxMTSlots bounds the kernel slot numbers the decoder tracks
const maxMTSlots = 16

// rawEvent is a kernel input_event without its timestamp
type rawEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// AxisRange is the absolute range a device reports for one axis
type AxisRange struct {
	Min int32 `json:"min"`
	Max int32 `json:"max"`
}

func (a AxisRange) valid() bool {
	return a.Max > a.Min
}

// scale maps a raw axis value onto [0, size)
func (a AxisRange) scale(value int32, size float64) float64 {
	if !a.valid() || size <= 0 {
		return float64(value)
	}
	return float64(value-a.Min) / float64(a.Max-a.Min) * size
}

type mtSlot struct {
	active bool
	x, y   int32

	// pending changes since the last report
	release bool
	down    bool
	lift    bool
	moved   bool
}

// mtDecoder turns a multitouch protocol B event stream into TouchEvents.
// Contacts are reported once per SYN_REPORT, releases before new contacts.
type mtDecoder struct {
	xRange, yRange AxisRange
	width, height  float64

	// idBase keeps ids from different devices apart
	idBase int32

	slot     int
	slots    [maxMTSlots]mtSlot
	dropping bool
}

func newMTDecoder(x, y AxisRange, width, height int32, idBase int32) *mtDecoder {
	return &mtDecoder{
		xRange: x,
		yRange: y,
		width:  float64(width),
		height: float64(height),
		idBase: idBase,
	}
}

func (d *mtDecoder) setOutputSize(width, height int32) {
	d.width = float64(width)
	d.height = float64(height)
}

// touchID is never 0, which belongs to pointer emulation
func (d *mtDecoder) touchID(slot int) int32 {
	return d.idBase + int32(slot) + 1
}

func (d *mtDecoder) current() *mtSlot {
	if d.slot < 0 || d.slot >= maxMTSlots {
		return nil
	}
	return &d.slots[d.slot]
}

// feed consumes one raw event and returns the touch events completed by it
func (d *mtDecoder) feed(ev rawEvent) []TouchEvent {
	switch ev.Type {
	case evSyn:
		switch ev.Code {
		case synDropped:
			// buffer overrun: state is unknown until the next report
			d.dropping = true
			d.reset()
			return []TouchEvent{{Kind: TouchCancel}}
		case synReport:
			if d.dropping {
				d.dropping = false
				return nil
			}
			return d.flush()
		}

	case evAbs:
		if d.dropping {
			return nil
		}

		if ev.Code == absMTSlot {
			d.slot = int(ev.Value)
			return nil
		}

		s := d.current()
		if s == nil {
			return nil
		}

		switch ev.Code {
		case absMTTrackingID:
			if ev.Value < 0 {
				if s.down {
					s.lift = true
				} else if s.active {
					s.release = true
				}
				return nil
			}
			if s.active {
				// new contact on a busy slot without a release in between
				s.release = true
			}
			s.down = true
			s.lift = false
		case absMTPositionX:
			s.x = ev.Value
			s.moved = true
		case absMTPositionY:
			s.y = ev.Value
			s.moved = true
		}
	}

	return nil
}

func (d *mtDecoder) position(s *mtSlot) (float64, float64) {
	return d.xRange.scale(s.x, d.width), d.yRange.scale(s.y, d.height)
}

func (d *mtDecoder) flush() []TouchEvent {
	var events []TouchEvent

	for i := range d.slots {
		s := &d.slots[i]
		if s.release && s.active {
			events = append(events, TouchEvent{Kind: TouchUp, ID: d.touchID(i)})
			s.active = false
		}
	}

	for i := range d.slots {
		s := &d.slots[i]
		x, y := d.position(s)

		switch {
		case s.down:
			events = append(events, TouchEvent{Kind: TouchDown, ID: d.touchID(i), X: x, Y: y})
			s.active = true
			if s.lift {
				// came and went within one report
				events = append(events, TouchEvent{Kind: TouchUp, ID: d.touchID(i)})
				s.active = false
			}
		case s.active && s.moved:
			events = append(events, TouchEvent{Kind: TouchMotion, ID: d.touchID(i), X: x, Y: y})
		}

		s.release, s.down, s.lift, s.moved = false, false, false, false
	}

	return events
}

func (d *mtDecoder) reset() {
	for i := range d.slots {
		d.slots[i] = mtSlot{}
	}
}

// activeContacts is the number of contacts currently down
func (d *mtDecoder) activeContacts() int {
	n := 0
	for _, s := range d.slots {
		if s.active {
			n++
		}
	}
	return n
}
