// Package seedgen generates the unsorted input partitions handed to the
// engine before a run, one of the external collaborators the core engine treats
// as out of scope for the core itself.
package seedgen

import "math/rand/v2"

// Generate fills a length-n partition for rank with pseudo-random int64
// values in [0, bound). Each rank gets an independent PCG stream seeded
// from runSeed XOR rank, so two runs started with the same runSeed and
// topology produce bit-identical input partitions.
func Generate(runSeed uint64, rank int, n int, bound int64) []int64 {
	src := rand.NewPCG(runSeed^uint64(rank), uint64(rank))
	rng := rand.New(src)

	out := make([]int64, n)
	for i := range out {
		out[i] = rng.Int64N(bound)
	}
	return out
}
