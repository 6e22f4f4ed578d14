// Package batch groups ordered items into fixed-size batches.
package batch

// DefaultSize is the default number of items per batch.
const DefaultSize = 10

// Split partitions items into consecutive batches of size items, the last
// possibly smaller. Order is preserved and no batch is empty; an empty
// input yields an empty, non-nil result. size <= 0 uses DefaultSize.
//
// Batches share the backing array of items, so writes through a batch are
// visible in items. Capacities are capped: appending to a batch cannot
// overwrite its neighbour.
func Split[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultSize
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches
}
