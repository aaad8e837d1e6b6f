package engine

// PairwiseExchange implements the pairwise min/max exchange step of a bitonic merge.
// For each i, if ascending and a[i] > b[i] (or !ascending and a[i] < b[i]),
// a[i] and b[i] are swapped. Afterward a holds the element-wise min and b the
// element-wise max when ascending (reversed when descending). a and b must
// have equal length and must not alias each other; the function performs no
// allocation and its effect on index i is independent of every other index.
func PairwiseExchange(a, b []int64, ascending bool) {
	for i := range a {
		if ascending {
			if a[i] > b[i] {
				a[i], b[i] = b[i], a[i]
			}
		} else {
			if a[i] < b[i] {
				a[i], b[i] = b[i], a[i]
			}
		}
	}
}
