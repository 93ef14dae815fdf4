// Package viewer implements the pan/zoom transform engine of the image viewer.
package viewer

import "math"

// Transform maps content pixels to container pixels:
// screen = content*Scale + (X, Y).
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Identity is the transform at scale 1 with no translation.
var Identity = Transform{Scale: 1}

// Size is a width and height in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of s.
func (s Size) Center() Point {
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

// Point is a position in container or content pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToContent maps a container point into content space.
func (t Transform) ToContent(p Point) Point {
	return Point{X: (p.X - t.X) / t.Scale, Y: (p.Y - t.Y) / t.Scale}
}

// ToScreen maps a content point into container space.
func (t Transform) ToScreen(p Point) Point {
	return Point{X: p.X*t.Scale + t.X, Y: p.Y*t.Scale + t.Y}
}

// Lerp interpolates every component from a to b.
func Lerp(a, b Transform, p float64) Transform {
	return Transform{
		X:     a.X + (b.X-a.X)*p,
		Y:     a.Y + (b.Y-a.Y)*p,
		Scale: a.Scale + (b.Scale-a.Scale)*p,
	}
}

// EaseOutQuad decelerates towards the end: 1-(1-p)^2.
func EaseOutQuad(p float64) float64 {
	return 1 - (1-p)*(1-p)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
