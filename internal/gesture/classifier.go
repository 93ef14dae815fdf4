package gesture

import (
	"sync"
	"time"

	"github.com/ayusman/panmotion/internal/detector"
)

// Classifier owns a gesture State and delivers each frame's events to a
// Handlers set. Handlers may be swapped between frames.
type Classifier struct {
	mu       sync.Mutex
	config   Config
	state    *State
	handlers *Handlers
	last     Output
}

// NewClassifier creates a Classifier. handlers may be nil.
func NewClassifier(config Config, handlers *Handlers) *Classifier {
	return &Classifier{
		config:   config,
		state:    NewState(config),
		handlers: handlers,
	}
}

// SetHandlers replaces the callback set used from the next frame on.
func (c *Classifier) SetHandlers(h *Handlers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = h
}

// Process steps the classifier with one frame and dispatches its events.
// Callbacks run on the calling goroutine after the state lock is released.
func (c *Classifier) Process(hand *detector.HandLandmarks, vp Viewport, now time.Time) Output {
	c.mu.Lock()
	out := Step(c.state, c.config, Input{Hand: hand, Viewport: vp, Now: now})
	c.last = out
	h := c.handlers
	c.mu.Unlock()

	for _, e := range out.Events {
		h.Dispatch(e)
	}
	return out
}

// Reset discards all state. A drag in progress is ended first so listeners
// never see a dangling drag.
func (c *Classifier) Reset() {
	c.mu.Lock()
	wasDragging := c.state.GraspActive()
	c.state = NewState(c.config)
	c.last = Output{}
	h := c.handlers
	c.mu.Unlock()

	if wasDragging {
		h.Dispatch(Event{Type: EventDragEnd})
	}
}

// Last returns the output of the most recent frame.
func (c *Classifier) Last() Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Overlay returns the display state of the most recent frame.
func (c *Classifier) Overlay() Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Overlay()
}
