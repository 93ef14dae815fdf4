package preview

import (
	"context"
	"sync"
)

// Buffer holds the most recent encoded preview frame. Readers wait for
// frames newer than the one they last saw, so slow readers skip frames
// instead of queueing them.
type Buffer struct {
	mu    sync.Mutex
	frame []byte
	seq   uint64
	ready chan struct{}
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{ready: make(chan struct{})}
}

// Publish stores frame as the latest one and wakes all waiting readers.
// The Buffer takes ownership of frame.
func (b *Buffer) Publish(frame []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = frame
	b.seq++
	close(b.ready)
	b.ready = make(chan struct{})
}

// Latest returns the latest frame and its sequence number. seq is zero when
// nothing has been published.
func (b *Buffer) Latest() (frame []byte, seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frame, b.seq
}

// Next blocks until a frame newer than after is available or ctx is done.
func (b *Buffer) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		b.mu.Lock()
		if b.seq > after {
			frame, seq := b.frame, b.seq
			b.mu.Unlock()
			return frame, seq, nil
		}
		ready := b.ready
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-ready:
		}
	}
}
