package engine

import (
	"github.com/georrous6/bitonic-sort-mpi/internal/transport"
	apperr "github.com/georrous6/bitonic-sort-mpi/pkg/errors"
)

// arena owns the scratch buffer and the send/receive request slices for the
// lifetime of one sort call, reused across every stage and step so a single
// call allocates its transient state exactly once. Allocation failure here
// is a resource error: fatal to the whole rank group, never retried.
type arena struct {
	scratch []int64
	sends   []transport.Request
	recvs   []transport.Request
	pending []bool
}

// newArena allocates the scratch buffer (length n) and request slices (
// capacity maxBatches, the largest R = N/B this call will ever need in one
// step) for the duration of one DistributedBitonicSort call.
func newArena(n, maxBatches int) (*arena, error) {
	if n <= 0 || maxBatches <= 0 {
		return nil, apperr.New(apperr.CodeResourceError, "invalid arena dimensions")
	}
	return &arena{
		scratch: make([]int64, n),
		sends:   make([]transport.Request, maxBatches),
		recvs:   make([]transport.Request, maxBatches),
		pending: make([]bool, maxBatches),
	}, nil
}

// resetPending marks the first count entries of pending as outstanding,
// ready for a fresh WaitAny loop.
func (a *arena) resetPending(count int) {
	for i := 0; i < count; i++ {
		a.pending[i] = true
	}
	for i := count; i < len(a.pending); i++ {
		a.pending[i] = false
	}
}
