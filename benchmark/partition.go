package benchmark

import "imagebench/workload"

// Partition splits items into consecutive batches of batchSize; the last
// batch holds the remainder. A batchSize <= 0 yields a single batch with
// every item. Batches share the backing array of items.
func Partition(items []workload.Item, batchSize int) [][]workload.Item {
	n := len(items)
	if n == 0 {
		return nil
	}
	if batchSize <= 0 || batchSize > n {
		batchSize = n
	}

	batches := make([][]workload.Item, 0, (n+batchSize-1)/batchSize)
	for i := 0; i < n; i += batchSize {
		end := min(n, i+batchSize)
		batches = append(batches, items[i:end:end])
	}
	return batches
}
