// Package run drives one complete distributed bitonic sort invocation: it
// seeds every rank's input partition, spawns a goroutine per rank over a
// shared transport.Fabric, collects each rank's timing ledger, and runs
// the advisory post-sort validation.
package run

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/georrous6/bitonic-sort-mpi/internal/engine"
	"github.com/georrous6/bitonic-sort-mpi/internal/seedgen"
	"github.com/georrous6/bitonic-sort-mpi/internal/transport"
	"github.com/georrous6/bitonic-sort-mpi/internal/validate"
)

// Options configures one invocation of Run.
type Options struct {
	Params   engine.Params
	Seed     uint64
	Bound    int64
	Validate bool
	// DepthHint seeds SeedSort's recursion-depth heuristic; zero runs the
	// seed sort single-threaded.
	DepthHint int
}

// Outcome is everything a driver needs to report about a completed run.
type Outcome struct {
	Ledgers    []engine.Ledger // Ledgers[r] is rank r's timing ledger
	Partitions [][]int64       // Partitions[r] is rank r's final sorted partition
	Validation validate.Result
}

// Run spawns Params.P rank goroutines, seeds their input, and drives the
// distributed sort to completion. If any rank returns a fatal error
// (a resource, transport, or configuration error), ctx is
// cancelled for every other rank via errgroup, mirroring MPI_Abort's
// all-or-nothing failure semantics, and Run returns that error.
func Run(ctx context.Context, opts Options) (Outcome, error) {
	params := opts.Params
	if err := params.Validate(); err != nil {
		return Outcome{}, err
	}

	fabric, err := transport.NewFabric(params.P, params.BatchCount())
	if err != nil {
		return Outcome{}, err
	}

	partitions := make([][]int64, params.P)
	ledgers := make([]engine.Ledger, params.P)

	g, gctx := errgroup.WithContext(ctx)
	for r := 0; r < params.P; r++ {
		r := r
		local := seedgen.Generate(opts.Seed, r, params.N, opts.Bound)
		recv := make([]int64, params.N)
		partitions[r] = local

		g.Go(func() error {
			ep := fabric.Endpoint(r)
			ledger, err := engine.DistributedBitonicSort(gctx, local, recv, params, r, opts.DepthHint, ep)
			ledgers[r] = ledger
			if err != nil {
				return fmt.Errorf("rank %d: %w", r, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Outcome{Ledgers: ledgers}, err
	}

	outcome := Outcome{Ledgers: ledgers, Partitions: partitions}

	if opts.Validate {
		result := validate.Partitions(partitions)
		outcome.Validation = result
		if !result.OK {
			return outcome, result.Err()
		}
	}

	return outcome, nil
}
