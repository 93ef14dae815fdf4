// Package headzoom estimates zoom from head distance. The face bounding-box
// area grows as the user leans in, so the frame-to-frame ratio of the smoothed
// area is used as a zoom factor.
package headzoom

import (
	"math"
	"sync"

	"github.com/ayusman/panmotion/internal/detector"
	"github.com/ayusman/panmotion/internal/smooth"
)

// Config holds the estimator constants.
type Config struct {
	// Alpha is the EMA alpha applied to the raw bbox area.
	Alpha float64
	// Deadzone suppresses ratios with |ratio-1| at or below it.
	Deadzone float64
	// Sensitivity scales the deviation of the ratio from 1.
	Sensitivity float64
	// WarmupFrames is how many frames the EMA settles before output starts.
	WarmupFrames int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:        0.08,
		Deadzone:     0.006,
		Sensitivity:  1.8,
		WarmupFrames: 15,
	}
}

// Estimator turns a stream of face meshes into zoom factors.
// It is safe for concurrent use.
type Estimator struct {
	mu      sync.Mutex
	config  Config
	area    smooth.Scalar
	prev    float64
	hasPrev bool
	warmup  int
}

// New creates an Estimator.
func New(config Config) *Estimator {
	return &Estimator{
		config: config,
		area:   smooth.NewScalar(config.Alpha),
	}
}

// Process consumes one frame. A nil face resets all state. ok is true when a
// zoom factor should be applied.
func (e *Estimator) Process(face *detector.FaceLandmarks) (factor float64, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if face == nil || len(face.Points) == 0 {
		e.reset()
		return 0, false
	}

	if _, seeded := e.area.Value(); !seeded {
		e.warmup = 0
	}
	smoothed := e.area.Update(detector.FaceBBoxArea(face))
	e.warmup++

	if e.warmup > e.config.WarmupFrames && e.hasPrev && e.prev > 0 {
		deviation := smoothed/e.prev - 1
		if math.Abs(deviation) > e.config.Deadzone {
			factor = 1 + deviation*e.config.Sensitivity
			ok = true
		}
	}

	// Always compare against the immediately preceding frame.
	e.prev = smoothed
	e.hasPrev = true
	return factor, ok
}

// ResetBaseline forces a fresh baseline, restarting the warm-up.
func (e *Estimator) ResetBaseline() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Estimator) reset() {
	e.area.Reset()
	e.prev = 0
	e.hasPrev = false
	e.warmup = 0
}
