package engine

import (
	"container/heap"
	"context"
	"runtime"
	"sort"

	"github.com/georrous6/bitonic-sort-mpi/pkg/parallel"
)

// serialSortThreshold is the partition length below which SeedSort falls back
// to a single-threaded sort instead of fanning out across chunks.
const serialSortThreshold = 1024

// SeedSort produces the alternating-direction bitonic starting distribution:
// partition r is sorted ascending if r is even, descending if r is odd.
// depth is a recursion-depth budget for the internal
// shared-memory parallel merge sort; callers MAY pass 0 to force a
// single-threaded sort, since the core's correctness never depends on the
// seed sort running in parallel. When depth > 0 and the partition is large
// enough to be worth splitting, the partition is divided into 2^depth
// (capped at GOMAXPROCS) contiguous chunks, each sorted concurrently by a
// parallel.WorkerPool, then merged with a k-way heap merge.
func SeedSort(local []int64, rank int, depth int) {
	ascending := rank%2 == 0
	n := len(local)

	chunks := chunkCount(n, depth)
	if chunks <= 1 {
		serialSort(local, ascending)
		return
	}

	bounds := splitBounds(n, chunks)
	config := parallel.DefaultPoolConfig().WithWorkers(chunks)
	_, _ = parallel.ForEach(context.Background(), indices(chunks), config, func(ctx context.Context, i int) error {
		lo, hi := bounds[i], bounds[i+1]
		serialSort(local[lo:hi], ascending)
		return nil
	})

	merged := make([]int64, 0, n)
	merged = kWayMerge(local, bounds, ascending, merged)
	copy(local, merged)
}

// chunkCount picks the number of chunks to fan the seed sort out across: at
// most 2^depth, never more than GOMAXPROCS, and never so many that a chunk
// would fall below serialSortThreshold.
func chunkCount(n, depth int) int {
	if depth <= 0 || n <= serialSortThreshold {
		return 1
	}
	maxByDepth := 1 << depth
	maxBySize := n / serialSortThreshold
	chunks := maxByDepth
	if maxBySize < chunks {
		chunks = maxBySize
	}
	if cpus := runtime.GOMAXPROCS(0); cpus < chunks {
		chunks = cpus
	}
	if chunks < 1 {
		chunks = 1
	}
	return chunks
}

// splitBounds divides [0, n) into `chunks` contiguous, near-equal ranges,
// returning chunks+1 boundaries.
func splitBounds(n, chunks int) []int {
	bounds := make([]int, chunks+1)
	base, rem := n/chunks, n%chunks
	pos := 0
	for i := 0; i < chunks; i++ {
		size := base
		if i < rem {
			size++
		}
		bounds[i] = pos
		pos += size
	}
	bounds[chunks] = n
	return bounds
}

func indices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// serialSort sorts a slice in place using the standard library.
func serialSort(x []int64, ascending bool) {
	if ascending {
		sort.Slice(x, func(i, j int) bool { return x[i] < x[j] })
	} else {
		sort.Slice(x, func(i, j int) bool { return x[i] > x[j] })
	}
}

// heapItem is one chunk's current head during the k-way merge.
type heapItem struct {
	value     int64
	chunk     int
	remaining []int64
}

type mergeHeap struct {
	items     []heapItem
	ascending bool
}

func (h mergeHeap) Len() int { return len(h.items) }
func (h mergeHeap) Less(i, j int) bool {
	if h.ascending {
		return h.items[i].value < h.items[j].value
	}
	return h.items[i].value > h.items[j].value
}
func (h mergeHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *mergeHeap) Push(x any)   { h.items = append(h.items, x.(heapItem)) }
func (h *mergeHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// kWayMerge merges the already-sorted chunks of local delimited by bounds
// into dst, which must have zero length and spare capacity for len(local).
func kWayMerge(local []int64, bounds []int, ascending bool, dst []int64) []int64 {
	h := &mergeHeap{ascending: ascending}
	heap.Init(h)
	for c := 0; c+1 < len(bounds); c++ {
		lo, hi := bounds[c], bounds[c+1]
		if lo == hi {
			continue
		}
		heap.Push(h, heapItem{value: local[lo], chunk: c, remaining: local[lo+1 : hi]})
	}

	for h.Len() > 0 {
		top := heap.Pop(h).(heapItem)
		dst = append(dst, top.value)
		if len(top.remaining) > 0 {
			heap.Push(h, heapItem{value: top.remaining[0], chunk: top.chunk, remaining: top.remaining[1:]})
		}
	}
	return dst
}
