package benchmark

import (
	"context"

	"imagebench/errors"
	"imagebench/store"
	"imagebench/workload"
)

// Names of the passes a run is made of.
const (
	OpGenerate = "generate"
	OpWrite    = "write"
	OpRead     = "read"
	OpDelete   = "delete"
)

// Operation consumes one item and reports how many bytes it transferred.
type Operation interface {
	Apply(ctx context.Context, item workload.Item) (int64, error)
}

// OperationFunc adapts a plain function to Operation.
type OperationFunc func(ctx context.Context, item workload.Item) (int64, error)

func (f OperationFunc) Apply(ctx context.Context, item workload.Item) (int64, error) {
	return f(ctx, item)
}

// WriteOp loads an item's payload from disk and stores it under the item key.
type WriteOp struct {
	Store store.Store
}

func (w WriteOp) Apply(ctx context.Context, item workload.Item) (int64, error) {
	data, release, err := item.Load()
	if err != nil {
		return 0, err
	}
	defer release()

	if err := w.Store.Put(ctx, item.Key, data); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// ReadOp fetches the value stored under an item key. A missing key counts
// as a zero-byte read, not a failure.
type ReadOp struct {
	Store store.Store
}

func (r ReadOp) Apply(ctx context.Context, item workload.Item) (int64, error) {
	data, err := r.Store.Get(ctx, item.Key)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// DeleteOp removes an item key. It transfers no payload bytes.
type DeleteOp struct {
	Store store.Store
}

func (d DeleteOp) Apply(ctx context.Context, item workload.Item) (int64, error) {
	return 0, d.Store.Delete(ctx, item.Key)
}

// GenerateOp renders the synthetic image an item points at.
type GenerateOp struct {
	PixelsPerSide int
}

func (g GenerateOp) Apply(_ context.Context, item workload.Item) (int64, error) {
	i, err := workload.ImageIndex(item.Key)
	if err != nil {
		return 0, err
	}
	return workload.WriteImage(item.Path, i, g.PixelsPerSide)
}
