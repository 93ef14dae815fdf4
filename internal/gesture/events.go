package gesture

// CursorState labels what the hand is doing in the current frame.
type CursorState string

const (
	StateIdle   CursorState = "idle"
	StateGrasp  CursorState = "grasp"
	StateSpread CursorState = "spread"
	StatePinch  CursorState = "pinch"
	StateHidden CursorState = "hidden"
)

// EventType identifies a classifier event.
type EventType string

const (
	EventDragStart  EventType = "drag_start"
	EventDrag       EventType = "drag"
	EventDragEnd    EventType = "drag_end"
	EventDoubleTap  EventType = "double_tap"
	EventReset      EventType = "reset"
	EventCursorMove EventType = "cursor_move"
	EventZoom       EventType = "zoom"
)

// Event is one discrete output of a frame. X and Y carry a position for
// DragStart, DoubleTap and CursorMove, and a delta for Drag.
type Event struct {
	Type   EventType   `json:"type"`
	X      float64     `json:"x,omitempty"`
	Y      float64     `json:"y,omitempty"`
	Factor float64     `json:"factor,omitempty"`
	State  CursorState `json:"state,omitempty"`
}

// Handlers is the callback set events are delivered to. Nil fields are skipped.
type Handlers struct {
	OnDragStart  func(x, y float64)
	OnDrag       func(dx, dy float64)
	OnDragEnd    func()
	OnDoubleTap  func(x, y float64)
	OnReset      func()
	OnCursorMove func(x, y float64, state CursorState)
	OnZoom       func(factor float64)
}

// Dispatch delivers e to the matching callback in h.
func (h *Handlers) Dispatch(e Event) {
	if h == nil {
		return
	}
	switch e.Type {
	case EventDragStart:
		if h.OnDragStart != nil {
			h.OnDragStart(e.X, e.Y)
		}
	case EventDrag:
		if h.OnDrag != nil {
			h.OnDrag(e.X, e.Y)
		}
	case EventDragEnd:
		if h.OnDragEnd != nil {
			h.OnDragEnd()
		}
	case EventDoubleTap:
		if h.OnDoubleTap != nil {
			h.OnDoubleTap(e.X, e.Y)
		}
	case EventReset:
		if h.OnReset != nil {
			h.OnReset()
		}
	case EventCursorMove:
		if h.OnCursorMove != nil {
			h.OnCursorMove(e.X, e.Y, e.State)
		}
	case EventZoom:
		if h.OnZoom != nil {
			h.OnZoom(e.Factor)
		}
	}
}
