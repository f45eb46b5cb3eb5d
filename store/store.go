// Package store defines the contract every benchmarked storage backend
// implements. Backends live in sub-packages.
package store

import (
	"context"

	"imagebench/errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("store: key not found")

// Store persists opaque blobs under string keys.
//
// Each call acquires and releases its own backend handle (transaction,
// pooled connection or request), so calls are safe to issue concurrently
// and never share a handle.
type Store interface {
	// Put stores value under key, replacing any existing value.
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}
