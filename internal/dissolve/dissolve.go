// Package dissolve generates the noise map and alpha masks used for the
// dissolve transition between the map and a section.
package dissolve

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/aquilax/go-perlin"
)

const (
	// MapSize is the width and height of the dissolve map in cells.
	MapSize = 128
	// EdgeWidth is the progress span over which a cell fades out.
	EdgeWidth = 0.07

	// Weight of the radial term: cells near the center dissolve first.
	radialWeight = 0.55
)

// octave is one noise layer of the map.
type octave struct {
	freq   float64
	seed   int64
	weight float64
}

var octaves = []octave{
	{freq: 6, seed: 42, weight: 0.28},
	{freq: 14, seed: 13, weight: 0.14},
	{freq: 28, seed: 7, weight: 0.08},
}

// Map is a square field of dissolve thresholds in [0,1]. A cell disappears
// once progress passes its value.
type Map struct {
	Size   int
	Values []float32
}

// At returns the value of cell (x, y).
func (m *Map) At(x, y int) float32 {
	return m.Values[y*m.Size+x]
}

// GenerateMap builds the dissolve map. It is deterministic: the noise seeds
// are fixed.
func GenerateMap() *Map {
	layers := make([]*perlin.Perlin, len(octaves))
	for i, o := range octaves {
		layers[i] = perlin.NewPerlin(2, 2, 1, o.seed)
	}

	m := &Map{Size: MapSize, Values: make([]float32, MapSize*MapSize)}
	c := float64(MapSize) / 2
	maxDist := math.Hypot(c, c)

	for y := 0; y < MapSize; y++ {
		for x := 0; x < MapSize; x++ {
			nx := float64(x) / MapSize
			ny := float64(y) / MapSize

			v := math.Hypot(float64(x)-c, float64(y)-c) / maxDist * radialWeight
			for i, o := range octaves {
				v += unit(layers[i].Noise2D(nx*o.freq, ny*o.freq)) * o.weight
			}
			m.Values[y*MapSize+x] = float32(math.Max(0, math.Min(1, v)))
		}
	}
	return m
}

// unit maps noise in [-1,1] to [0,1].
func unit(n float64) float64 {
	return math.Max(0, math.Min(1, (n+1)/2))
}

// Alpha returns the mask alpha of a cell with value v at the given progress.
// It never increases as progress grows.
func Alpha(v, progress float64) float64 {
	return math.Max(0, math.Min(1, (v-progress)/EdgeWidth))
}

// RenderMask renders m as a white image whose alpha is the mask at progress.
// Progress 0 leaves everything visible, 1 dissolves everything.
func RenderMask(m *Map, progress float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Size, m.Size))
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			a := Alpha(float64(m.At(x, y)), progress)
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(a * 255)})
		}
	}
	return img
}

// EncodePNG encodes a mask for use as an image payload.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode mask: %w", err)
	}
	return buf.Bytes(), nil
}
