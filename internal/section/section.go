// Package section describes the selectable regions of the map image and
// resolves screen points to them.
package section

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/panmotion/internal/viewer"
)

// Rect is an axis-aligned rectangle in content pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r. Edges count as inside.
func (r Rect) Contains(p viewer.Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the middle of r.
func (r Rect) Center() viewer.Point {
	return viewer.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// CropOrigin is where the section crop image sits in the source image.
type CropOrigin struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
}

// Section is one selectable region of the map.
type Section struct {
	ID         string     `json:"id"`
	Rect       Rect       `json:"rect"`
	CropSrc    string     `json:"cropSrc"`
	CropOrigin CropOrigin `json:"cropOrigin"`
	Has3D      bool       `json:"has3D"`
	ModelSrc   string     `json:"modelSrc,omitempty"`
}

// ErrInvalid is returned by Validate for malformed sections.
var ErrInvalid = errors.New("invalid section")

// Validate checks that s has an id and a non-empty rect.
func (s Section) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if !(s.Rect.Width > 0) || !(s.Rect.Height > 0) {
		return fmt.Errorf("%w: rect %vx%v must have positive size", ErrInvalid, s.Rect.Width, s.Rect.Height)
	}
	if s.Has3D && s.ModelSrc == "" {
		return fmt.Errorf("%w: 3D section needs a model", ErrInvalid)
	}
	return nil
}

// HitTest maps the container point (x, y) into content space through t and
// returns the first section containing it, or nil.
func HitTest(x, y float64, t viewer.Transform, sections []Section) *Section {
	p := t.ToContent(viewer.Point{X: x, Y: y})
	for i := range sections {
		if sections[i].Rect.Contains(p) {
			return &sections[i]
		}
	}
	return nil
}

// ByID returns the section with the given id, or nil.
func ByID(id string, sections []Section) *Section {
	for i := range sections {
		if sections[i].ID == id {
			return &sections[i]
		}
	}
	return nil
}

// Frame returns the transform that fits the section into the container with
// padding pixels on every side, centered, with the scale clamped to the
// engine limits.
func Frame(s Section, container viewer.Size, padding float64, cfg viewer.Config) viewer.Transform {
	availW := math.Max(1, container.Width-2*padding)
	availH := math.Max(1, container.Height-2*padding)

	scale := cfg.MinScale
	if s.Rect.Width > 0 && s.Rect.Height > 0 {
		scale = math.Min(availW/s.Rect.Width, availH/s.Rect.Height)
	}
	scale = math.Max(cfg.MinScale, math.Min(cfg.MaxScale, scale))

	c := s.Rect.Center()
	return viewer.Transform{
		X:     container.Width/2 - c.X*scale,
		Y:     container.Height/2 - c.Y*scale,
		Scale: scale,
	}
}

// Defaults returns the built-in sections of the bundled map.
func Defaults() []Section {
	return []Section{
		{
			ID:         "section-a",
			Rect:       Rect{X: 629, Y: 255, Width: 208, Height: 258},
			CropSrc:    "/sections/section-a.png",
			CropOrigin: CropOrigin{X0: 400, Y0: 200},
			Has3D:      false,
		},
	}
}
