package detector

import (
	"context"
	"log"
	"sync"
)

// Factory creates a ready-to-use Detector. It should give up when ctx is done.
type Factory func(ctx context.Context) (Detector, error)

// Provider shares one lazily created Detector between users. Loading models is
// expensive, so the detector is created on the first Acquire and closed when
// the last user releases it.
type Provider struct {
	factory Factory

	mu      sync.Mutex
	det     Detector
	refs    int
	loading chan struct{}
}

// NewProvider creates a Provider that builds detectors with factory.
func NewProvider(factory Factory) *Provider {
	return &Provider{factory: factory}
}

// Acquire returns the shared detector, creating it if needed. Every successful
// Acquire must be paired with a Release.
func (p *Provider) Acquire(ctx context.Context) (Detector, error) {
	for {
		p.mu.Lock()
		if p.det != nil {
			p.refs++
			det := p.det
			p.mu.Unlock()
			return det, nil
		}

		if p.loading != nil {
			// Another caller is loading; wait for it and look again.
			wait := p.loading
			p.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		done := make(chan struct{})
		p.loading = done
		p.mu.Unlock()

		det, err := p.factory(ctx)

		p.mu.Lock()
		p.loading = nil
		close(done)
		if err != nil {
			p.mu.Unlock()
			return nil, err
		}
		if ctx.Err() != nil {
			p.mu.Unlock()
			det.Close()
			return nil, ctx.Err()
		}
		p.det = det
		p.refs = 1
		p.mu.Unlock()
		return det, nil
	}
}

// Release drops one reference. The detector is closed when none remain.
func (p *Provider) Release() {
	p.mu.Lock()
	if p.refs == 0 {
		p.mu.Unlock()
		return
	}
	p.refs--
	if p.refs > 0 {
		p.mu.Unlock()
		return
	}
	det := p.det
	p.det = nil
	p.mu.Unlock()

	if err := det.Close(); err != nil {
		log.Printf("detector: close: %v", err)
	}
}

// Refs returns the number of outstanding references.
func (p *Provider) Refs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refs
}
