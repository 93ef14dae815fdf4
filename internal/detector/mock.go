package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result Result
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the result that will be returned by Detect.
func (m *MockDetector) SetResult(r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	return m.result, nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// handWithTips builds a right hand whose fingertips sit at center+offset.
// The remaining joints are interpolated between the wrist and each tip.
func handWithTips(cx, cy float64, offsets [5]Point2D) *HandLandmarks {
	h := &HandLandmarks{Handedness: "Right", Score: 0.95}
	wrist := Point2D{X: cx, Y: cy + 0.2}
	h.Points[Wrist] = wrist

	for f, tipIdx := range TipIndices {
		tip := Point2D{X: cx + offsets[f].X, Y: cy + offsets[f].Y}
		// Joints of finger f occupy tipIdx-3 .. tipIdx.
		for j := 1; j <= 4; j++ {
			t := float64(j) / 4
			h.Points[tipIdx-4+j] = Point2D{
				X: wrist.X + (tip.X-wrist.X)*t,
				Y: wrist.Y + (tip.Y-wrist.Y)*t,
			}
		}
	}
	return h
}

// FistLandmarks returns a closed hand with all fingertips bunched together
// around (cx, cy). Its largest tip distance is well under the grasp threshold.
func FistLandmarks(cx, cy float64) *HandLandmarks {
	return handWithTips(cx, cy, [5]Point2D{
		{X: -0.02, Y: 0},
		{X: -0.01, Y: -0.02},
		{X: 0, Y: -0.025},
		{X: 0.01, Y: -0.02},
		{X: 0.02, Y: -0.015},
	})
}

// OpenHandLandmarks returns a relaxed open hand: fingers side by side with the
// thumb held away from them. It is neither grasping, spread nor pinching.
func OpenHandLandmarks(cx, cy float64) *HandLandmarks {
	return handWithTips(cx, cy, [5]Point2D{
		{X: -0.14, Y: 0.02},
		{X: -0.045, Y: -0.12},
		{X: 0, Y: -0.13},
		{X: 0.045, Y: -0.12},
		{X: 0.09, Y: -0.09},
	})
}

// SpreadLandmarks returns a hand with all five fingers spread apart.
func SpreadLandmarks(cx, cy float64) *HandLandmarks {
	return handWithTips(cx, cy, [5]Point2D{
		{X: -0.15, Y: 0.05},
		{X: -0.08, Y: -0.12},
		{X: 0, Y: -0.16},
		{X: 0.08, Y: -0.12},
		{X: 0.16, Y: -0.04},
	})
}

// PinchLandmarks returns an open hand with the thumb touching the index tip.
func PinchLandmarks(cx, cy float64) *HandLandmarks {
	return handWithTips(cx, cy, [5]Point2D{
		{X: -0.03, Y: -0.10},
		{X: -0.02, Y: -0.12},
		{X: 0.02, Y: -0.13},
		{X: 0.06, Y: -0.11},
		{X: 0.12, Y: -0.07},
	})
}

// FaceMeshLandmarks returns a face mesh centered at (cx, cy) whose bounding
// box is width x width, so its area is width squared.
func FaceMeshLandmarks(cx, cy, width float64) *FaceLandmarks {
	r := width / 2
	f := &FaceLandmarks{Points: make([]Point2D, NumFaceLandmarks)}
	for i := range f.Points {
		angle := 2 * math.Pi * float64(i) / NumFaceLandmarks
		radius := r
		if i%3 != 0 {
			radius = r * 0.6
		}
		f.Points[i] = Point2D{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		}
	}
	return f
}
