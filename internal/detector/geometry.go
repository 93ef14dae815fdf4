package detector

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point2D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// tipDistances returns the 10 pairwise distances between fingertips.
func tipDistances(h *HandLandmarks) []float64 {
	dists := make([]float64, 0, 10)
	for i := 0; i < len(TipIndices); i++ {
		for j := i + 1; j < len(TipIndices); j++ {
			dists = append(dists, Distance(h.Points[TipIndices[i]], h.Points[TipIndices[j]]))
		}
	}
	return dists
}

// MaxTipDistance returns the largest pairwise fingertip distance.
// A closed fist or grasp drives it towards zero.
func MaxTipDistance(h *HandLandmarks) float64 {
	return floats.Max(tipDistances(h))
}

// MinTipDistance returns the smallest pairwise fingertip distance.
// It is large only when all five fingers are spread apart.
func MinTipDistance(h *HandLandmarks) float64 {
	return floats.Min(tipDistances(h))
}

// ThumbPinchMinDist returns the distance from the thumb tip to the nearer of
// the index and middle fingertips.
func ThumbPinchMinDist(h *HandLandmarks) float64 {
	thumb := h.Points[ThumbTip]
	return math.Min(
		Distance(thumb, h.Points[IndexTip]),
		Distance(thumb, h.Points[MiddleTip]),
	)
}

// TipsCentroid returns the mean position of the five fingertips.
func TipsCentroid(h *HandLandmarks) Point2D {
	var sx, sy float64
	for _, idx := range TipIndices {
		sx += h.Points[idx].X
		sy += h.Points[idx].Y
	}
	n := float64(len(TipIndices))
	return Point2D{X: sx / n, Y: sy / n}
}

// BBox is an axis-aligned box in normalized image space.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Area returns the box area.
func (b BBox) Area() float64 {
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// Bounds returns the bounding box of the face mesh.
func (f *FaceLandmarks) Bounds() BBox {
	b := BBox{MinX: 1, MinY: 1, MaxX: 0, MaxY: 0}
	for _, p := range f.Points {
		b.MinX = math.Min(b.MinX, p.X)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// FaceBBoxArea returns the area of the face bounding box. A face closer to
// the camera produces a larger area.
func FaceBBoxArea(f *FaceLandmarks) float64 {
	if f == nil || len(f.Points) == 0 {
		return 0
	}
	return f.Bounds().Area()
}
