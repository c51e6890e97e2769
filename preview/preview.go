// Package preview draws the shell into a desktop window and feeds mouse,
// touch and keyboard input from that window to a compositor.
package preview

import (
	"image"
	"image/color"
	"time"

	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"

	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/shell"
)

const progressBarHeight = unit.Dp(6)

var progressColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xc0}

// Preview is not safe for concurrent use; it owns its compositor and must run
// on the window's event goroutine
type Preview struct {
	c    *compositor.Compositor
	last time.Time
	size image.Point
}

func New(c *compositor.Compositor) *Preview {
	return &Preview{c: c}
}

// View is the view currently shown
func (p *Preview) View() shell.View {
	return p.c.State().View
}

// Layout handles pending input, advances animations and draws one frame
func (p *Preview) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	if size != p.size && size.X > 0 && size.Y > 0 {
		p.size = size
		p.c.SetScreenSize(int32(size.X), int32(size.Y))
	}

	p.handleEvents(gtx)

	var delta time.Duration
	if !p.last.IsZero() {
		delta = gtx.Now.Sub(p.last)
	}
	p.last = gtx.Now
	info := p.c.Frame(delta)

	paint.Fill(gtx.Ops, info.Visual.NRGBA())
	if info.Transitioning || info.State.Progress > 0 {
		p.drawProgress(gtx, info.State.Progress)
	}
	if info.Transitioning {
		gtx.Execute(op.InvalidateCmd{})
	}

	area := clip.Rect{Max: p.size}.Push(gtx.Ops)
	event.Op(gtx.Ops, p)
	area.Pop()

	return layout.Dimensions{Size: p.size}
}

func (p *Preview) drawProgress(gtx layout.Context, progress float64) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	width := int(float64(p.size.X) * progress)
	bar := image.Rect(0, p.size.Y-gtx.Dp(progressBarHeight), width, p.size.Y)
	paint.FillShape(gtx.Ops, progressColor, clip.Rect(bar).Op())
}

func (p *Preview) handleEvents(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(
			pointer.Filter{
				Target: p,
				Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
			},
			key.Filter{Name: key.NameSuper},
			key.Filter{Name: key.NameHome},
		)
		if !ok {
			return
		}

		switch e := ev.(type) {
		case pointer.Event:
			p.Pointer(e)
		case key.Event:
			p.Key(e)
		}
	}
}

// Pointer routes a window pointer event. Mouse input goes through the
// compositor's pointer path, touch contacts keep their own ids.
func (p *Preview) Pointer(e pointer.Event) {
	x, y := float64(e.Position.X), float64(e.Position.Y)

	if e.Source == pointer.Touch {
		// 0 is the mouse pointer's id
		id := int32(e.PointerID) + 1
		switch e.Kind {
		case pointer.Press:
			p.c.TouchDown(id, x, y)
		case pointer.Drag:
			p.c.TouchMotion(id, x, y)
		case pointer.Release:
			p.c.TouchUp(id)
		case pointer.Cancel:
			p.c.TouchCancel()
		}
		return
	}

	switch e.Kind {
	case pointer.Press:
		p.c.PointerButton(true, x, y)
	case pointer.Drag:
		p.c.PointerMotion(x, y)
	case pointer.Release:
		p.c.PointerButton(false, x, y)
	case pointer.Cancel:
		p.c.TouchCancel()
	}
}

// Key maps Super and Home to the compositor's home shortcut
func (p *Preview) Key(e key.Event) bool {
	if e.State != key.Press {
		return false
	}
	switch e.Name {
	case key.NameSuper, key.NameHome:
		return p.c.Key(compositor.KeySuper)
	}
	return false
}
