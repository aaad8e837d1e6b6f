package transport

import (
	"context"
	"sync"
)

// cyclicBarrier is a reusable rendezvous point for a fixed number of
// goroutines, adapted from a WaitGroup/stopCh shutdown rendezvous
// pattern but generalized to cycle indefinitely instead of firing once.
type cyclicBarrier struct {
	n       int
	mu      sync.Mutex
	count   int
	release chan struct{}
}

func newCyclicBarrier(n int) *cyclicBarrier {
	return &cyclicBarrier{n: n, release: make(chan struct{})}
}

// Wait blocks the calling goroutine until n goroutines have called Wait for
// the current generation, then releases all of them simultaneously.
func (b *cyclicBarrier) Wait(ctx context.Context) error {
	b.mu.Lock()
	gen := b.release
	b.count++
	if b.count == b.n {
		b.count = 0
		b.release = make(chan struct{})
		close(gen)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	select {
	case <-gen:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
