package run

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georrous6/bitonic-sort-mpi/internal/engine"
	"github.com/georrous6/bitonic-sort-mpi/internal/seedgen"
	"github.com/georrous6/bitonic-sort-mpi/internal/validate"
)

func TestRun_SortsAndValidates(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"single_rank", Options{Params: engine.Params{P: 1, N: 64, B: 16}, Seed: 1, Bound: 1 << 20, Validate: true}},
		{"two_ranks", Options{Params: engine.Params{P: 2, N: 64, B: 16}, Seed: 2, Bound: 1 << 20, Validate: true}},
		{"four_ranks", Options{Params: engine.Params{P: 4, N: 32, B: 8}, Seed: 3, Bound: 1 << 20, Validate: true}},
		{"eight_ranks_small_batch", Options{Params: engine.Params{P: 8, N: 16, B: 4}, Seed: 4, Bound: 1 << 20, Validate: true}},
		{"batch_equals_partition", Options{Params: engine.Params{P: 4, N: 32, B: 32}, Seed: 5, Bound: 1 << 20, Validate: true}},
		{"larger_topology", Options{Params: engine.Params{P: 16, N: 8, B: 2}, Seed: 6, Bound: 1 << 20, Validate: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := Run(context.Background(), tc.opts)
			require.NoError(t, err)
			require.Len(t, outcome.Partitions, tc.opts.Params.P)
			require.Len(t, outcome.Ledgers, tc.opts.Params.P)
			assert.True(t, outcome.Validation.OK, outcome.Validation.Offense)

			for r, part := range outcome.Partitions {
				for i := 1; i < len(part); i++ {
					assert.LessOrEqualf(t, part[i-1], part[i], "rank %d not sorted locally", r)
				}
				if r > 0 {
					prev := outcome.Partitions[r-1]
					if len(prev) > 0 && len(part) > 0 {
						assert.LessOrEqualf(t, prev[len(prev)-1], part[0], "boundary violated between rank %d and %d", r-1, r)
					}
				}
			}
		})
	}
}

func TestRun_DeterministicForSameSeed(t *testing.T) {
	opts := Options{Params: engine.Params{P: 4, N: 32, B: 8}, Seed: 99, Bound: 1 << 20, Validate: true}

	first, err := Run(context.Background(), opts)
	require.NoError(t, err)

	second, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, first.Partitions, second.Partitions)
}

func TestRun_MultisetPreserved(t *testing.T) {
	opts := Options{Params: engine.Params{P: 4, N: 32, B: 8}, Seed: 123, Bound: 1 << 20}

	before := make([][]int64, opts.Params.P)
	for r := range before {
		before[r] = seedgen.Generate(opts.Seed, r, opts.Params.N, opts.Bound)
	}

	outcome, err := Run(context.Background(), opts)
	require.NoError(t, err)

	seen := make(map[int64]int)
	for _, part := range outcome.Partitions {
		for _, v := range part {
			seen[v]++
		}
	}
	total := 0
	for _, c := range seen {
		total += c
	}
	assert.Equal(t, opts.Params.P*opts.Params.N, total)
	assert.True(t, validate.Multiset(before, outcome.Partitions))
}

func TestRun_BatchSizeInvariance(t *testing.T) {
	seed := uint64(55)

	fine, err := Run(context.Background(), Options{Params: engine.Params{P: 4, N: 64, B: 8}, Seed: seed, Bound: 1 << 20})
	require.NoError(t, err)

	coarse, err := Run(context.Background(), Options{Params: engine.Params{P: 4, N: 64, B: 64}, Seed: seed, Bound: 1 << 20})
	require.NoError(t, err)

	assert.Equal(t, fine.Partitions, coarse.Partitions)
}

func TestRun_RejectsInvalidParams(t *testing.T) {
	_, err := Run(context.Background(), Options{Params: engine.Params{P: 3, N: 16, B: 4}, Seed: 1, Bound: 100})
	assert.Error(t, err)
}
