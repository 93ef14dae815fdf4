// Package smooth implements exponential moving average filters used to take
// per-frame jitter out of landmark-derived signals.
package smooth

import "github.com/ayusman/panmotion/internal/detector"

// EMA returns the next smoothed value. When seeded is false the raw sample
// becomes the seed and is returned unchanged.
func EMA(prev float64, seeded bool, raw, alpha float64) float64 {
	if !seeded {
		return raw
	}
	return prev + alpha*(raw-prev)
}

// Scalar is an EMA over a single value.
// The zero value is unseeded and has a zero Alpha, which holds the seed forever.
type Scalar struct {
	Alpha float64

	value  float64
	seeded bool
}

// NewScalar returns an unseeded Scalar with the given alpha.
func NewScalar(alpha float64) Scalar {
	return Scalar{Alpha: alpha}
}

// Update blends raw into the smoothed value and returns it.
func (s *Scalar) Update(raw float64) float64 {
	s.value = EMA(s.value, s.seeded, raw, s.Alpha)
	s.seeded = true
	return s.value
}

// Value returns the current smoothed value and whether it has been seeded.
func (s *Scalar) Value() (float64, bool) {
	return s.value, s.seeded
}

// Reset drops the smoothed value so that the next sample seeds.
func (s *Scalar) Reset() {
	s.value = 0
	s.seeded = false
}

// Point is an EMA applied per axis to a 2D point.
type Point struct {
	Alpha float64

	value  detector.Point2D
	seeded bool
}

// NewPoint returns an unseeded Point with the given alpha.
func NewPoint(alpha float64) Point {
	return Point{Alpha: alpha}
}

// Update blends raw into the smoothed point and returns it.
func (p *Point) Update(raw detector.Point2D) detector.Point2D {
	p.value = detector.Point2D{
		X: EMA(p.value.X, p.seeded, raw.X, p.Alpha),
		Y: EMA(p.value.Y, p.seeded, raw.Y, p.Alpha),
	}
	p.seeded = true
	return p.value
}

// Value returns the current smoothed point and whether it has been seeded.
func (p *Point) Value() (detector.Point2D, bool) {
	return p.value, p.seeded
}

// Reset drops the smoothed point so that the next sample seeds.
func (p *Point) Reset() {
	p.value = detector.Point2D{}
	p.seeded = false
}
