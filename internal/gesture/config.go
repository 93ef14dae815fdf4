package gesture

import "time"

// Config holds the thresholds and filter constants of the classifier.
// Distances are in normalized landmark units.
type Config struct {
	// EMA alphas per signal.
	GraspAlpha  float64
	CursorAlpha float64
	PinchAlpha  float64
	SpreadAlpha float64

	// Grasp hysteresis: enter below GraspActivate, leave above GraspDeactivate.
	GraspActivate   float64
	GraspDeactivate float64

	// DragDeadband is the per-axis cursor movement in pixels a drag frame
	// must exceed before OnDrag fires.
	DragDeadband float64

	// SpreadAllMinDist is the smallest pairwise fingertip distance that still
	// counts as a spread hand.
	SpreadAllMinDist float64

	// Shake reset fires once the last ShakeBufferSize centroid-x samples span
	// more than ShakeRange.
	ShakeBufferSize int
	ShakeRange      float64

	// Pinch hysteresis for the thumb to index/middle distance.
	PinchDown float64
	PinchUp   float64

	// DoublePinchMinSpread is the grasp distance the hand must exceed for
	// pinches to count, so a closing fist never looks like a pinch.
	DoublePinchMinSpread float64

	// DoublePinchWindow is the longest gap between two releases of a double pinch.
	DoublePinchWindow time.Duration

	// Speed scales cursor movement relative to the viewport size.
	Speed float64

	// HideWhileLost reports the hidden state for every frame without a hand
	// instead of only the first one.
	HideWhileLost bool

	// ClampCursor keeps the cursor inside the viewport.
	ClampCursor bool
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		GraspAlpha:           0.20,
		CursorAlpha:          0.30,
		PinchAlpha:           0.25,
		SpreadAlpha:          0.20,
		GraspActivate:        0.12,
		GraspDeactivate:      0.18,
		DragDeadband:         0.5,
		SpreadAllMinDist:     0.08,
		ShakeBufferSize:      15,
		ShakeRange:           0.25,
		PinchDown:            0.06,
		PinchUp:              0.12,
		DoublePinchMinSpread: 0.13,
		DoublePinchWindow:    500 * time.Millisecond,
		Speed:                1.0,
	}
}
