// Package engine implements the distributed bitonic merge-sort core: the
// alternating-direction seed sort, the pairwise min/max exchange, the elbow
// merge, and the stage orchestrator that drives them across a hypercube of
// ranks.
package engine

import (
	"math/bits"

	apperr "github.com/georrous6/bitonic-sort-mpi/pkg/errors"
)

// Params describes one sort call's shape: P = 2^p ranks, a local partition of
// N = 2^q elements per rank, exchanged in batches of B = 2^s elements.
type Params struct {
	P int
	N int
	B int
}

// Stages returns log2(P), the number of bitonic-merge network stages.
func (pr Params) Stages() int {
	return bits.TrailingZeros(uint(pr.P))
}

// BatchCount returns R = N/B, the number of batches exchanged per step.
func (pr Params) BatchCount() int {
	return pr.N / pr.B
}

// Validate checks the preconditions from the entry point contract: P, N, and
// B must each be a positive power of two, and B must not exceed N.
func (pr Params) Validate() error {
	if !isPowerOfTwo(pr.P) {
		return apperr.New(apperr.CodeConfigError, "process count P must be a positive power of two")
	}
	if !isPowerOfTwo(pr.N) {
		return apperr.New(apperr.CodeConfigError, "partition length N must be a positive power of two")
	}
	if !isPowerOfTwo(pr.B) {
		return apperr.New(apperr.CodeConfigError, "batch size B must be a positive power of two")
	}
	if pr.B > pr.N {
		return apperr.New(apperr.CodeConfigError, "batch size B must not exceed partition length N")
	}
	return nil
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}
