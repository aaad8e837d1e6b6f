// Package validate implements the optional post-sort validation of
// advisory post-sort check, never run by the core itself, that a
// completed sort actually produced a non-decreasing global sequence.
package validate

import (
	"fmt"
	"slices"

	apperr "github.com/georrous6/bitonic-sort-mpi/pkg/errors"
)

// Result summarizes one validation pass over all ranks' partitions.
type Result struct {
	OK      bool
	Offense string // empty when OK
}

// Partitions checks the two invariant-violation conditions:
// every rank's local partition must be internally sorted ascending, and the
// last element of rank r must not exceed the first element of rank r+1.
// partitions[r] is rank r's final local partition. The check is advisory:
// it never mutates its input and its failure is reported, not recovered
// from, by the caller.
func Partitions(partitions [][]int64) Result {
	for r, part := range partitions {
		for i := 1; i < len(part); i++ {
			if part[i-1] > part[i] {
				return Result{OK: false, Offense: fmt.Sprintf("rank %d not sorted: local[%d]=%d > local[%d]=%d", r, i-1, part[i-1], i, part[i])}
			}
		}
	}
	for r := 0; r < len(partitions)-1; r++ {
		left, right := partitions[r], partitions[r+1]
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		if left[len(left)-1] > right[0] {
			return Result{OK: false, Offense: fmt.Sprintf("boundary violation between rank %d and %d: %d > %d", r, r+1, left[len(left)-1], right[0])}
		}
	}
	return Result{OK: true}
}

// Err converts a failing Result into the invariant-violation error class of
// error class, or nil if the result passed.
func (res Result) Err() error {
	if res.OK {
		return nil
	}
	return apperr.New(apperr.CodeInvariantError, res.Offense)
}

// Multiset reports whether the multiset union of before and after is equal,
// a multiset-preservation check. It is O(n log n) and
// allocates a single sorted copy of each side rather than hashing, so the
// comparison is exact for the fixed-width signed integers this engine sorts.
func Multiset(before, after [][]int64) bool {
	b := flattenSorted(before)
	a := flattenSorted(after)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func flattenSorted(partitions [][]int64) []int64 {
	total := 0
	for _, p := range partitions {
		total += len(p)
	}
	flat := make([]int64, 0, total)
	for _, p := range partitions {
		flat = append(flat, p...)
	}
	slices.Sort(flat)
	return flat
}
