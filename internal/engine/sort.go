package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/georrous6/bitonic-sort-mpi/internal/transport"
	apperr "github.com/georrous6/bitonic-sort-mpi/pkg/errors"
)

var tracer = otel.Tracer("bitonicsort/engine")

// DistributedBitonicSort is the per-rank entry point of the sort: given this rank's
// local and receive partitions (each length params.N), it runs the seed
// sort followed by the log2(P) stages of partner exchange, leaving local
// sorted ascending (for every rank, once stage log2(P) completes) and recv
// undefined. Every rank in the group must call this concurrently over a
// shared Fabric; ctx cancellation (propagated by the caller, typically via
// errgroup, on another rank's fatal error) aborts this rank's participation
// immediately, mirroring MPI_Abort's all-or-nothing failure semantics.
func DistributedBitonicSort(ctx context.Context, local, recv []int64, params Params, rank int, depthHint int, ep *transport.Endpoint) (Ledger, error) {
	ctx, span := tracer.Start(ctx, "DistributedBitonicSort",
		trace.WithAttributes(
			attribute.Int("rank", rank),
			attribute.Int("processes", params.P),
			attribute.Int("elements", params.N),
			attribute.Int("batch_size", params.B),
		))
	defer span.End()

	ledger, err := distributedBitonicSort(ctx, local, recv, params, rank, depthHint, ep)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return ledger, err
}

func distributedBitonicSort(ctx context.Context, local, recv []int64, params Params, rank int, depthHint int, ep *transport.Endpoint) (Ledger, error) {
	var ledger Ledger

	if err := params.Validate(); err != nil {
		return ledger, err
	}
	if len(local) != params.N || len(recv) != params.N {
		return ledger, apperr.New(apperr.CodeConfigError, "local and receive partitions must have length N")
	}
	if rank < 0 || rank >= params.P {
		return ledger, apperr.New(apperr.CodeConfigError, "rank out of range")
	}

	timer := newPhaseTimer(nil)

	seedTiming := timer.Start(phaseSeed)
	SeedSort(local, rank, depthHint)
	seedTiming.Stop()

	ar, err := newArena(params.N, params.BatchCount())
	if err != nil {
		return snapshotLedger(timer), err
	}

	stages := params.Stages()
	for stage := 1; stage <= stages; stage++ {
		stageCtx, stageSpan := tracer.Start(ctx, fmt.Sprintf("stage-%d", stage),
			trace.WithAttributes(attribute.Int("stage", stage)))

		chunkSize := 1 << stage
		chunk := rank / chunkSize
		ascending := chunk%2 == 0

		for step := stage - 1; step >= 0; step-- {
			exchangeTiming := timer.Start(exchangePhase(stage, step))
			partner := rank ^ (1 << step)

			if err := runStep(stageCtx, ep, ar, local, recv, partner, rank, ascending, params.B); err != nil {
				exchangeTiming.Stop()
				stageSpan.RecordError(err)
				stageSpan.SetStatus(codes.Error, err.Error())
				stageSpan.End()
				return snapshotLedger(timer), err
			}

			if err := ep.Barrier(stageCtx); err != nil {
				err = apperr.Wrap(apperr.CodeTransportError, "barrier failed", err)
				exchangeTiming.Stop()
				stageSpan.RecordError(err)
				stageSpan.SetStatus(codes.Error, err.Error())
				stageSpan.End()
				return snapshotLedger(timer), err
			}
			exchangeTiming.Stop()
		}

		elbowTiming := timer.Start(elbowPhase(stage))
		ElbowMerge(local, ar.scratch, ascending)
		elbowTiming.Stop()

		if err := ep.Barrier(stageCtx); err != nil {
			err = apperr.Wrap(apperr.CodeTransportError, "barrier failed", err)
			stageSpan.RecordError(err)
			stageSpan.SetStatus(codes.Error, err.Error())
			stageSpan.End()
			return snapshotLedger(timer), err
		}
		stageSpan.End()
	}

	if err := ep.Barrier(ctx); err != nil {
		return snapshotLedger(timer), apperr.Wrap(apperr.CodeTransportError, "barrier failed", err)
	}
	return snapshotLedger(timer), nil
}

// runStep performs one butterfly step's worth of exchange between rank and
// partner, per the hypercube pairing rules: the upper rank is a
// passive mirror, the lower rank is the active worker applying the pairwise
// min/max exchange batch by batch as receives complete.
func runStep(ctx context.Context, ep *transport.Endpoint, ar *arena, local, recv []int64, partner, rank int, ascending bool, batchSize int) error {
	select {
	case <-ctx.Done():
		return apperr.Wrap(apperr.CodeTransportError, "sort cancelled", ctx.Err())
	default:
	}

	r := len(local) / batchSize

	if rank > partner {
		return passiveMirror(ctx, ep, ar, local, partner, r, batchSize)
	}
	return activeWorker(ctx, ep, ar, local, recv, partner, ascending, r, batchSize)
}

// passiveMirror is the upper end of a pair: it posts all sends and receives
// for its partition up front, waits for the receives (its partition is
// atomically replaced by the partner-computed halves), then waits for the
// sends to drain.
func passiveMirror(ctx context.Context, ep *transport.Endpoint, ar *arena, local []int64, partner, r, batchSize int) error {
	ar.resetPending(r)
	for i := 0; i < r; i++ {
		lo, hi := i*batchSize, (i+1)*batchSize
		ar.sends[i] = ep.ISend(partner, i, local[lo:hi])
	}
	for i := 0; i < r; i++ {
		lo, hi := i*batchSize, (i+1)*batchSize
		ar.recvs[i] = ep.IRecv(partner, i, local[lo:hi])
	}
	for remaining := r; remaining > 0; remaining-- {
		if _, err := ep.WaitAny(ctx, ar.recvs[:r], ar.pending[:r]); err != nil {
			return apperr.Wrap(apperr.CodeTransportError, "passive mirror receive failed", err)
		}
	}
	if err := ep.WaitAll(ar.sends[:r]); err != nil {
		return apperr.Wrap(apperr.CodeTransportError, "passive mirror send failed", err)
	}
	return nil
}

// activeWorker is the lower end of a pair: it posts all R receives before
// processing any (so the passive side's sends never go unmatched), then
// applies the pairwise exchange to each batch as it arrives, in arrival
// order via wait-any, shipping the resulting max (or min) half back with a
// matching tag.
func activeWorker(ctx context.Context, ep *transport.Endpoint, ar *arena, local, recv []int64, partner int, ascending bool, r, batchSize int) error {
	ar.resetPending(r)
	for i := 0; i < r; i++ {
		lo, hi := i*batchSize, (i+1)*batchSize
		ar.recvs[i] = ep.IRecv(partner, i, recv[lo:hi])
	}

	for remaining := r; remaining > 0; remaining-- {
		i, err := ep.WaitAny(ctx, ar.recvs[:r], ar.pending[:r])
		if err != nil {
			return apperr.Wrap(apperr.CodeTransportError, "active worker receive failed", err)
		}
		lo, hi := i*batchSize, (i+1)*batchSize
		PairwiseExchange(local[lo:hi], recv[lo:hi], ascending)
		ar.sends[i] = ep.ISend(partner, i, recv[lo:hi])
	}

	if err := ep.WaitAll(ar.sends[:r]); err != nil {
		return apperr.Wrap(apperr.CodeTransportError, "active worker send failed", err)
	}
	return nil
}
