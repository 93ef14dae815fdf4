package app

import (
	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/gesture"
	"github.com/ayusman/panmotion/internal/viewer"
)

// EventSink receives everything the app publishes. Publish must not block.
type EventSink interface {
	Publish(v any)
}

// Message kinds.
const (
	KindGesture  = "gesture"
	KindHeadZoom = "head_zoom"
	KindView     = "view"
	KindPhase    = "phase"
	KindFeatures = "features"
)

// Message is one published event. Exactly one payload field is set,
// matching Kind.
type Message struct {
	Kind     string            `json:"kind"`
	Gesture  *gesture.Event    `json:"gesture,omitempty"`
	Factor   float64           `json:"factor,omitempty"`
	View     *viewer.Transform `json:"view,omitempty"`
	Phase    *flow.State       `json:"phase,omitempty"`
	Features *Features         `json:"features,omitempty"`
}

func (a *App) publish(m Message) {
	a.mu.Lock()
	sink := a.sink
	a.mu.Unlock()
	if sink != nil {
		sink.Publish(m)
	}
}

func (a *App) publishGesture(e gesture.Event) {
	a.publish(Message{Kind: KindGesture, Gesture: &e})
}

// MultiSink fans every message out to each of sinks in order.
func MultiSink(sinks ...EventSink) EventSink {
	return multiSink(sinks)
}

type multiSink []EventSink

func (m multiSink) Publish(v any) {
	for _, s := range m {
		s.Publish(v)
	}
}
