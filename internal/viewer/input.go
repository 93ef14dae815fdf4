package viewer

import "math"

// Pointer adapts raw mouse, wheel and touch input to engine operations.
// Coordinates are container pixels. It is not safe for concurrent use; feed
// it from a single input goroutine.
type Pointer struct {
	engine *Engine

	dragging  bool
	last      Point
	touchDist float64
}

// NewPointer creates an input adapter for e.
func NewPointer(e *Engine) *Pointer {
	return &Pointer{engine: e}
}

// Wheel zooms about (x, y). Positive deltaY zooms out. Like every other
// input it takes over from any animation in flight.
func (p *Pointer) Wheel(deltaY, x, y float64) {
	p.engine.Cancel()
	p.engine.Zoom(1-deltaY*p.engine.Config().WheelFactor, x, y)
}

// MouseDown starts a drag with the primary button.
func (p *Pointer) MouseDown(button int, x, y float64) {
	if button != 0 {
		return
	}
	p.dragging = true
	p.last = Point{X: x, Y: y}
}

// MouseMove pans 1:1 while dragging.
func (p *Pointer) MouseMove(x, y float64) {
	if !p.dragging {
		return
	}
	p.engine.Cancel()
	p.engine.Pan(x-p.last.X, y-p.last.Y)
	p.last = Point{X: x, Y: y}
}

// MouseUp ends a drag.
func (p *Pointer) MouseUp() {
	p.dragging = false
}

// Dragging reports whether a mouse or single-touch drag is active.
func (p *Pointer) Dragging() bool {
	return p.dragging
}

// TouchStart begins a one-finger pan or a two-finger pinch.
func (p *Pointer) TouchStart(touches []Point) {
	switch len(touches) {
	case 1:
		p.dragging = true
		p.last = touches[0]
	case 2:
		p.dragging = false
		p.touchDist = touchDistance(touches[0], touches[1])
	}
}

// TouchMove pans with one finger, or zooms by the change in finger distance
// about the finger midpoint.
func (p *Pointer) TouchMove(touches []Point) {
	switch {
	case len(touches) == 1 && p.dragging:
		p.engine.Cancel()
		p.engine.Pan(touches[0].X-p.last.X, touches[0].Y-p.last.Y)
		p.last = touches[0]
	case len(touches) == 2:
		d := touchDistance(touches[0], touches[1])
		mid := Point{
			X: (touches[0].X + touches[1].X) / 2,
			Y: (touches[0].Y + touches[1].Y) / 2,
		}
		if p.touchDist > 0 {
			p.engine.Cancel()
			p.engine.Zoom(d/p.touchDist, mid.X, mid.Y)
		}
		p.touchDist = d
	}
}

// TouchEnd ends any touch gesture.
func (p *Pointer) TouchEnd() {
	p.dragging = false
	p.touchDist = 0
}

func touchDistance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
