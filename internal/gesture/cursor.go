package gesture

import (
	"math"

	"github.com/ayusman/panmotion/internal/detector"
)

// Viewport is the container size in pixels the cursor lives in.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the viewport.
func (v Viewport) Center() detector.Point2D {
	return detector.Point2D{X: v.Width / 2, Y: v.Height / 2}
}

// Cursor is a movement-relative pointer. It integrates hand motion rather
// than following absolute hand position, so the hand need not be centered in
// the camera frame.
type Cursor struct {
	pos    detector.Point2D
	placed bool
}

// Position returns the cursor position and whether it has been placed yet.
func (c *Cursor) Position() (detector.Point2D, bool) {
	return c.pos, c.placed
}

// Center places the cursor in the middle of vp.
func (c *Cursor) Center(vp Viewport) {
	c.pos = vp.Center()
	c.placed = true
}

// Move applies a smoothed-centroid delta in normalized units. The camera is
// mirrored, so x moves opposite to the hand.
func (c *Cursor) Move(delta detector.Point2D, vp Viewport, speed float64, clamp bool) {
	c.pos.X -= delta.X * vp.Width * speed
	c.pos.Y += delta.Y * vp.Height * speed
	if clamp {
		c.pos.X = math.Max(0, math.Min(vp.Width, c.pos.X))
		c.pos.Y = math.Max(0, math.Min(vp.Height, c.pos.Y))
	}
}
