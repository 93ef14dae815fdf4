package viewer

import (
	"sync"
	"time"

	"github.com/ayusman/panmotion/internal/timeutil"
)

// Engine owns the view transform. Every mutation keeps the scale within
// [MinScale, MaxScale]. It is safe for concurrent use; callbacks run without
// the engine lock held.
type Engine struct {
	mu        sync.Mutex
	config    Config
	clock     timeutil.Clock
	scheduler *FrameScheduler

	current   Transform
	home      Transform
	container Size

	// Animation bookkeeping. generation changes on every AnimateTo and
	// Cancel so a stale frame can tell it has been superseded.
	generation uint64
	frame      FrameID
	animating  bool

	onChange func(Transform)
	onCancel func()
}

// NewEngine creates an engine at the identity transform. A nil clock uses
// the real clock.
func NewEngine(config Config, scheduler *FrameScheduler, clock timeutil.Clock) *Engine {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := Identity
	start.Scale = clamp(start.Scale, config.MinScale, config.MaxScale)
	return &Engine{
		config:    config,
		clock:     clock,
		scheduler: scheduler,
		current:   start,
		home:      start,
	}
}

// OnChange registers fn to be called with the new transform after every
// change. Pass nil to remove it.
func (e *Engine) OnChange(fn func(Transform)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// OnCancel registers fn to be called when Cancel stops an animation before
// it completes. An animation superseded by AnimateTo does not count.
func (e *Engine) OnCancel(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onCancel = fn
}

// Config returns the engine limits.
func (e *Engine) Config() Config {
	return e.config
}

// Transform returns a copy of the current transform.
func (e *Engine) Transform() Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Home returns a copy of the home transform.
func (e *Engine) Home() Transform {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.home
}

// Container returns the last known container size.
func (e *Engine) Container() Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.container
}

// SetContainer records the container size used by ZoomCenter.
func (e *Engine) SetContainer(s Size) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.container = s
}

// Animating reports whether an animation is in flight.
func (e *Engine) Animating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.animating
}

// Pan translates the view by (dx, dy) container pixels.
func (e *Engine) Pan(dx, dy float64) {
	e.mu.Lock()
	e.current.X += dx
	e.current.Y += dy
	t, fn := e.current, e.onChange
	e.mu.Unlock()
	notify(fn, t)
}

// Zoom multiplies the scale by factor, keeping the container point (cx, cy)
// fixed on screen. The result is clamped; non-positive factors are ignored.
func (e *Engine) Zoom(factor, cx, cy float64) {
	if !(factor > 0) {
		return
	}
	e.mu.Lock()
	e.zoomLocked(factor, cx, cy)
	t, fn := e.current, e.onChange
	e.mu.Unlock()
	notify(fn, t)
}

// ZoomCenter zooms about the middle of the container.
func (e *Engine) ZoomCenter(factor float64) {
	if !(factor > 0) {
		return
	}
	e.mu.Lock()
	c := e.container.Center()
	e.zoomLocked(factor, c.X, c.Y)
	t, fn := e.current, e.onChange
	e.mu.Unlock()
	notify(fn, t)
}

func (e *Engine) zoomLocked(factor, cx, cy float64) {
	cur := e.current
	next := clamp(cur.Scale*factor, e.config.MinScale, e.config.MaxScale)
	r := next / cur.Scale
	e.current = Transform{
		X:     cx - (cx-cur.X)*r,
		Y:     cy - (cy-cur.Y)*r,
		Scale: next,
	}
}

// CenterContent centers content of the given natural size in the container
// at scale 1, or the nearest allowed scale, and makes that the home transform. It reports false and changes
// nothing when either size is empty.
func (e *Engine) CenterContent(container, content Size) bool {
	if container.Width <= 0 || container.Height <= 0 || content.Width <= 0 || content.Height <= 0 {
		return false
	}
	scale := clamp(1, e.config.MinScale, e.config.MaxScale)
	e.mu.Lock()
	e.container = container
	e.home = Transform{
		X:     (container.Width - content.Width*scale) / 2,
		Y:     (container.Height - content.Height*scale) / 2,
		Scale: scale,
	}
	e.current = e.home
	t, fn := e.current, e.onChange
	e.mu.Unlock()
	notify(fn, t)
	return true
}

// Reset restores the home transform.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.current = e.home
	t, fn := e.current, e.onChange
	e.mu.Unlock()
	notify(fn, t)
}

// AnimateTo eases from the current transform to target over duration,
// one step per scheduler frame. Any animation in flight is cancelled and its
// onComplete never runs. onComplete, if set, runs exactly once when the
// target is reached. A non-positive duration uses Config.DefaultDuration.
func (e *Engine) AnimateTo(target Transform, duration time.Duration, onComplete func()) {
	if duration <= 0 {
		duration = e.config.DefaultDuration
	}
	target.Scale = clamp(target.Scale, e.config.MinScale, e.config.MaxScale)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	gen := e.generation
	start := e.current
	startedAt := e.clock.Now()
	e.animating = true

	var step func(now time.Time)
	step = func(now time.Time) {
		e.mu.Lock()
		if e.generation != gen {
			e.mu.Unlock()
			return
		}

		p := float64(now.Sub(startedAt)) / float64(duration)
		p = clamp(p, 0, 1)
		e.current = Lerp(start, target, EaseOutQuad(p))
		if p >= 1 {
			e.current = target
		}

		done := p >= 1
		if done {
			e.animating = false
			e.frame = 0
		} else {
			e.frame = e.scheduler.Request(step)
		}
		t, fn := e.current, e.onChange
		e.mu.Unlock()

		notify(fn, t)
		if done && onComplete != nil {
			onComplete()
		}
	}
	e.frame = e.scheduler.Request(step)
}

// Cancel stops any animation in flight without running its completion.
func (e *Engine) Cancel() {
	e.mu.Lock()
	stopped := e.animating
	e.cancelLocked()
	fn := e.onCancel
	e.mu.Unlock()

	if stopped && fn != nil {
		fn()
	}
}

func (e *Engine) cancelLocked() {
	if e.frame != 0 {
		e.scheduler.Cancel(e.frame)
		e.frame = 0
	}
	e.generation++
	e.animating = false
}

func notify(fn func(Transform), t Transform) {
	if fn != nil {
		fn(t)
	}
}
