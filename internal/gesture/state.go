// Package gesture turns per-frame hand landmarks into pointer gestures: grasp
// to drag, spread and shake to reset, double pinch to tap. A virtual cursor
// follows hand motion.
package gesture

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/panmotion/internal/detector"
	"github.com/ayusman/panmotion/internal/smooth"
)

// Input is everything Step needs for one frame.
type Input struct {
	// Hand is nil when no hand was detected.
	Hand     *detector.HandLandmarks
	Viewport Viewport
	Now      time.Time
}

// Output is the result of one frame.
type Output struct {
	Events []Event
	Cursor detector.Point2D
	State  CursorState
}

// Overlay is the display state used to annotate the camera preview.
type Overlay struct {
	HandVisible bool
	GraspActive bool
	PinchDown   bool
	// ShakeProgress is how far the current shake is towards a reset, in [0,1].
	// Zero when no shake is in progress.
	ShakeProgress float64
	// Centroid and GraspRadius are raw, in normalized image units.
	Centroid    detector.Point2D
	GraspRadius float64
}

// State is the per-session classifier state. The zero value is not ready;
// use NewState.
type State struct {
	graspDist  smooth.Scalar
	centroid   smooth.Point
	pinchDist  smooth.Scalar
	allMinDist smooth.Scalar

	graspActive bool
	dragFrom    detector.Point2D
	hasDragFrom bool

	pinchDown   bool
	lastRelease time.Time

	shake      shakeBuffer
	resetFired bool

	cursor       Cursor
	prevCentroid detector.Point2D
	hasPrev      bool

	// lost is true while no hand has been seen since the last gap began.
	lost    bool
	overlay Overlay
}

// NewState returns a fresh state for cfg.
func NewState(cfg Config) *State {
	return &State{
		graspDist:  smooth.NewScalar(cfg.GraspAlpha),
		centroid:   smooth.NewPoint(cfg.CursorAlpha),
		pinchDist:  smooth.NewScalar(cfg.PinchAlpha),
		allMinDist: smooth.NewScalar(cfg.SpreadAlpha),
		shake:      newShakeBuffer(cfg.ShakeBufferSize),
		lost:       true,
	}
}

// GraspActive reports whether a drag is in progress.
func (s *State) GraspActive() bool {
	return s.graspActive
}

// Overlay returns the display state of the last frame.
func (s *State) Overlay() Overlay {
	return s.overlay
}

// Step advances the state by one frame. Gestures are checked in priority
// order: spread and shake, grasp, double pinch. Events are returned in the
// order they occurred, with the cursor move always last.
func Step(s *State, cfg Config, in Input) Output {
	if in.Hand == nil {
		return stepLost(s, cfg, in)
	}

	var out Output
	emit := func(e Event) { out.Events = append(out.Events, e) }

	h := in.Hand
	rawCentroid := detector.TipsCentroid(h)
	graspDist := s.graspDist.Update(detector.MaxTipDistance(h))
	smoothCentroid := s.centroid.Update(rawCentroid)
	pinchDist := s.pinchDist.Update(detector.ThumbPinchMinDist(h))
	allMinDist := s.allMinDist.Update(detector.MinTipDistance(h))

	if _, placed := s.cursor.Position(); !placed {
		s.cursor.Center(in.Viewport)
	}
	s.lost = false

	state := StateIdle
	isSpread := allMinDist > cfg.SpreadAllMinDist

	// Spread and shake.
	if isSpread && !s.graspActive {
		state = StateSpread
		s.shake.push(rawCentroid.X)
		if s.shake.full() && !s.resetFired && s.shake.span() > cfg.ShakeRange {
			s.resetFired = true
			s.cursor.Center(in.Viewport)
			s.hasPrev = false
			emit(Event{Type: EventReset})
		}
	} else {
		s.shake.clear()
		s.resetFired = false
	}

	// Grasp.
	if !isSpread {
		if !s.graspActive && graspDist < cfg.GraspActivate {
			s.graspActive = true
			pos, _ := s.cursor.Position()
			s.dragFrom = pos
			s.hasDragFrom = true
			emit(Event{Type: EventDragStart, X: pos.X, Y: pos.Y})
		}

		if s.graspActive {
			state = StateGrasp
			pos, _ := s.cursor.Position()
			if s.hasDragFrom {
				dx := pos.X - s.dragFrom.X
				dy := pos.Y - s.dragFrom.Y
				if math.Abs(dx) > cfg.DragDeadband || math.Abs(dy) > cfg.DragDeadband {
					emit(Event{Type: EventDrag, X: dx, Y: dy})
				}
			}
			s.dragFrom = pos
			s.hasDragFrom = true

			if graspDist > cfg.GraspDeactivate {
				s.endGrasp()
				emit(Event{Type: EventDragEnd})
			}
		}
	} else if s.graspActive {
		s.endGrasp()
		emit(Event{Type: EventDragEnd})
	}

	// Double pinch.
	eligible := !s.graspActive && !isSpread && graspDist > cfg.DoublePinchMinSpread
	if eligible {
		if !s.pinchDown && pinchDist < cfg.PinchDown {
			s.pinchDown = true
		}
		if s.pinchDown && pinchDist > cfg.PinchUp {
			s.pinchDown = false
			if !s.lastRelease.IsZero() && in.Now.Sub(s.lastRelease) < cfg.DoublePinchWindow {
				pos, _ := s.cursor.Position()
				emit(Event{Type: EventDoubleTap, X: pos.X, Y: pos.Y})
				s.lastRelease = time.Time{}
			} else {
				s.lastRelease = in.Now
			}
		}

		if s.pinchDown && !s.lastRelease.IsZero() && in.Now.Sub(s.lastRelease) < cfg.DoublePinchWindow {
			state = StatePinch
		}
	} else {
		s.pinchDown = false
	}

	// Cursor.
	if s.hasPrev {
		s.cursor.Move(detector.Point2D{
			X: smoothCentroid.X - s.prevCentroid.X,
			Y: smoothCentroid.Y - s.prevCentroid.Y,
		}, in.Viewport, cfg.Speed, cfg.ClampCursor)
	}
	s.prevCentroid = smoothCentroid
	s.hasPrev = true

	s.overlay = Overlay{
		HandVisible:   true,
		GraspActive:   s.graspActive,
		PinchDown:     s.pinchDown,
		ShakeProgress: s.shakeProgress(cfg),
		Centroid:      rawCentroid,
		GraspRadius:   detector.MaxTipDistance(h),
	}

	pos, _ := s.cursor.Position()
	out.Cursor = pos
	out.State = state
	emit(Event{Type: EventCursorMove, X: pos.X, Y: pos.Y, State: state})
	return out
}

// stepLost applies the hand-loss bundle: end any drag, drop all smoothing,
// clear pinch and shake tracking and recenter the cursor.
func stepLost(s *State, cfg Config, in Input) Output {
	var out Output

	if s.graspActive {
		s.endGrasp()
		out.Events = append(out.Events, Event{Type: EventDragEnd})
	}
	s.graspDist.Reset()
	s.centroid.Reset()
	s.pinchDist.Reset()
	s.allMinDist.Reset()
	s.pinchDown = false
	s.lastRelease = time.Time{}
	s.shake.clear()
	s.resetFired = false
	s.hasPrev = false
	s.cursor.Center(in.Viewport)
	s.overlay = Overlay{}

	state := StateIdle
	if !s.lost || cfg.HideWhileLost {
		state = StateHidden
	}
	s.lost = true

	pos, _ := s.cursor.Position()
	out.Cursor = pos
	out.State = state
	out.Events = append(out.Events, Event{Type: EventCursorMove, X: pos.X, Y: pos.Y, State: state})
	return out
}

func (s *State) endGrasp() {
	s.graspActive = false
	s.hasDragFrom = false
}

// shakeProgress is the shake span relative to the reset range while a shake
// is building up.
func (s *State) shakeProgress(cfg Config) float64 {
	if s.resetFired || len(s.shake.values) <= 2 || cfg.ShakeRange <= 0 {
		return 0
	}
	return math.Min(1, s.shake.span()/cfg.ShakeRange)
}

// shakeBuffer keeps the most recent centroid-x samples of a spread episode.
type shakeBuffer struct {
	values []float64
	size   int
}

func newShakeBuffer(size int) shakeBuffer {
	return shakeBuffer{values: make([]float64, 0, size), size: size}
}

func (b *shakeBuffer) push(x float64) {
	if b.size <= 0 {
		return
	}
	if len(b.values) == b.size {
		copy(b.values, b.values[1:])
		b.values[b.size-1] = x
		return
	}
	b.values = append(b.values, x)
}

func (b *shakeBuffer) full() bool {
	return b.size > 0 && len(b.values) >= b.size
}

func (b *shakeBuffer) span() float64 {
	if len(b.values) == 0 {
		return 0
	}
	return floats.Max(b.values) - floats.Min(b.values)
}

func (b *shakeBuffer) clear() {
	b.values = b.values[:0]
}
