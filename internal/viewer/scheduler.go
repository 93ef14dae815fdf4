package viewer

import (
	"sync"
	"time"
)

// FrameID identifies a requested frame callback.
type FrameID uint64

// FrameScheduler queues callbacks for the next display frame. Whoever drives
// rendering calls RunFrame once per frame.
type FrameScheduler struct {
	mu      sync.Mutex
	nextID  FrameID
	order   []FrameID
	pending map[FrameID]func(now time.Time)
}

// NewFrameScheduler creates an empty scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{pending: make(map[FrameID]func(time.Time))}
}

// Request schedules fn for the next frame.
func (s *FrameScheduler) Request(fn func(now time.Time)) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.pending[id] = fn
	s.order = append(s.order, id)
	return id
}

// Cancel drops a pending callback. Unknown ids are ignored.
func (s *FrameScheduler) Cancel(id FrameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// RunFrame runs the callbacks queued before the call, in request order, and
// returns how many ran. Callbacks requested while the frame runs wait for the
// next one; callbacks cancelled while it runs are skipped.
func (s *FrameScheduler) RunFrame(now time.Time) int {
	s.mu.Lock()
	order := s.order
	s.order = nil
	s.mu.Unlock()

	ran := 0
	for _, id := range order {
		s.mu.Lock()
		fn, ok := s.pending[id]
		delete(s.pending, id)
		s.mu.Unlock()
		if ok {
			fn(now)
			ran++
		}
	}
	return ran
}

// Pending returns the number of callbacks waiting for a frame.
func (s *FrameScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
