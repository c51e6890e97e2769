package shell

import "image/color"

// Color is a linear RGB triple in [0,1]
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// ViewColor is the reference color the renderer fills for a view
func ViewColor(v View) Color {
	switch v {
	case ViewLock:
		return Color{R: 0.05, G: 0.05, B: 0.08}
	case ViewHome:
		return Color{R: 0.1, G: 0.1, B: 0.3}
	case ViewApp:
		return Color{R: 0.9, G: 0.9, B: 0.92}
	case ViewAppSwitcher:
		return Color{R: 0.2, G: 0.15, B: 0.25}
	case ViewQuickSettings:
		return Color{R: 0.15, G: 0.3, B: 0.35}
	}
	return Color{}
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Lerp interpolates from a to b; t is clamped to [0,1]
func Lerp(a, b Color, t float64) Color {
	t = clamp01(t)
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

// NRGBA converts c to an opaque 8-bit color
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: 0xff}
}

func channel(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
