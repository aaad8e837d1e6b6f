// Package transport is the in-process stand-in for the two-sided MPI
// transport the reference implementation runs over. Each rank is a
// goroutine; the Fabric gives every ordered pair of ranks one dedicated
// channel per tag slot, so concurrently posted sends/receives for distinct
// tags never contend on the same channel, and lets sends and receives be
// posted non-blockingly and completed later via Wait/WaitAll/WaitAny,
// mirroring MPI_Isend/MPI_Irecv/MPI_Wait/MPI_Waitany.
//
// Grounded on other_examples' ring all-reduce (one channel per neighbor
// pair, a goroutine per rank) and on a channel-driven worker-pool
// shutdown rendezvous for the barrier.
package transport

import (
	"context"
	"fmt"

	apperr "github.com/georrous6/bitonic-sort-mpi/pkg/errors"
)

// message is one batch in flight between two ranks on a given tag's channel.
type message struct {
	data []int64
}

// Fabric owns one directed channel per (from, to, tag) triple and a barrier
// shared by every rank.
type Fabric struct {
	p       int
	maxTags int
	links   [][][]chan message // links[from][to][tag]
	barrier *cyclicBarrier
}

// NewFabric allocates a fully-connected directed channel mesh for p ranks,
// with maxTags channels per ordered pair. maxTags must be sized to the
// largest R = N/B a caller will ever post in one step, since the active
// worker and its passive mirror address batches by tag 0..R-1 and each tag
// gets its own dedicated, capacity-1 channel: concurrent ISend/IRecv calls
// for distinct tags within a step never share a channel, so they never race
// against each other for delivery order. A Barrier between steps ensures
// every tag's channel is drained before the next step reuses it.
func NewFabric(p int, maxTags int) (*Fabric, error) {
	if p <= 0 {
		return nil, apperr.New(apperr.CodeConfigError, "fabric requires a positive rank count")
	}
	if maxTags < 1 {
		maxTags = 1
	}
	links := make([][][]chan message, p)
	for from := 0; from < p; from++ {
		links[from] = make([][]chan message, p)
		for to := 0; to < p; to++ {
			if from == to {
				continue
			}
			tags := make([]chan message, maxTags)
			for tag := range tags {
				tags[tag] = make(chan message, 1)
			}
			links[from][to] = tags
		}
	}
	return &Fabric{p: p, maxTags: maxTags, links: links, barrier: newCyclicBarrier(p)}, nil
}

// Endpoint returns the rank-scoped handle rank r uses to talk to the fabric.
func (f *Fabric) Endpoint(r int) *Endpoint {
	return &Endpoint{fabric: f, rank: r}
}

// Endpoint is the per-rank view of the Fabric: every call below is scoped to
// the rank it was obtained for.
type Endpoint struct {
	fabric *Fabric
	rank   int
}

// request is the internal completion record behind a posted send or receive.
type request struct {
	err  error
	done chan struct{}
}

// Request is an opaque handle to a posted, possibly still in-flight, send or
// receive, returned by ISend/IRecv and consumed by Wait/WaitAll/WaitAny.
type Request struct {
	r *request
}

// ISend posts a non-blocking send of data to partner, tagged tag. The slice
// is copied before the call returns, matching MPI_Isend's "buffer may be
// reused once Isend returns" contract; the network send itself still
// proceeds asynchronously and is observed by Wait/WaitAll. tag must be in
// [0, maxTags) as given to NewFabric.
func (e *Endpoint) ISend(partner, tag int, data []int64) Request {
	payload := make([]int64, len(data))
	copy(payload, data)

	req := &request{done: make(chan struct{})}
	ch := e.fabric.links[e.rank][partner][tag]
	go func() {
		ch <- message{data: payload}
		close(req.done)
	}()
	return Request{r: req}
}

// IRecv posts a non-blocking receive from partner into into, tagged tag.
// into is filled in place once the matching send arrives and the request
// completes. Because tag selects a dedicated channel, the message received
// here always originates from an ISend posted with the same tag.
func (e *Endpoint) IRecv(partner, tag int, into []int64) Request {
	req := &request{done: make(chan struct{})}
	ch := e.fabric.links[partner][e.rank][tag]
	go func() {
		defer close(req.done)
		msg, ok := <-ch
		if !ok {
			req.err = apperr.Wrap(apperr.CodeTransportError, "transport channel closed before matching message arrived", fmt.Errorf("partner %d tag %d", partner, tag))
			return
		}
		copy(into, msg.data)
	}()
	return Request{r: req}
}

// Wait blocks until req completes and returns its error, if any.
func (e *Endpoint) Wait(req Request) error {
	<-req.r.done
	return req.r.err
}

// WaitAll blocks until every request in reqs has completed, returning the
// first error encountered (if any) after draining all of them.
func (e *Endpoint) WaitAll(reqs []Request) error {
	var first error
	for _, req := range reqs {
		<-req.r.done
		if req.r.err != nil && first == nil {
			first = req.r.err
		}
	}
	return first
}

// WaitAny blocks until at least one request whose index is in pending has
// completed, returning its index and clearing it from pending. It checks
// every pending request with a non-blocking select and, if none has
// completed, blocks until one does or ctx is cancelled.
func (e *Endpoint) WaitAny(ctx context.Context, reqs []Request, pending []bool) (int, error) {
	for {
		for i, isPending := range pending {
			if !isPending {
				continue
			}
			select {
			case <-reqs[i].r.done:
				pending[i] = false
				return i, reqs[i].r.err
			default:
			}
		}
		select {
		case <-ctx.Done():
			return -1, apperr.Wrap(apperr.CodeTransportError, "wait-any cancelled", ctx.Err())
		case <-firstPending(reqs, pending):
		}
	}
}

// firstPending returns a channel that closes as soon as any still-pending
// request completes, used to avoid a busy-wait in WaitAny.
func firstPending(reqs []Request, pending []bool) <-chan struct{} {
	notify := make(chan struct{})
	var started bool
	for i, isPending := range pending {
		if !isPending {
			continue
		}
		started = true
		go func(r Request) {
			<-r.r.done
			select {
			case notify <- struct{}{}:
			default:
			}
		}(reqs[i])
	}
	if !started {
		close(notify)
	}
	return notify
}

// Barrier blocks the calling rank until every rank has called Barrier for
// the current generation. It exists purely for timing accuracy: it is
// never required for correctness of the exchange itself.
func (e *Endpoint) Barrier(ctx context.Context) error {
	return e.fabric.barrier.Wait(ctx)
}
