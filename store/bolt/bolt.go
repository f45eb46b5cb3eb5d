// Package bolt implements store.Store on an embedded bbolt key-value file.
package bolt

import (
	"context"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"imagebench/errors"
	"imagebench/store"
)

const (
	// FileName is the database file created inside the data directory.
	FileName = "images.db"

	bucketName = "images"
)

// Compile-time check for ensuring Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store keeps every image in a single bucket. Writes run in their own
// read-write transaction and reads in their own read-only transaction.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Options tune the underlying bbolt database.
type Options struct {
	// NoSync skips fsync after each commit.
	NoSync bool
	// Timeout bounds how long Open waits for the file lock.
	Timeout time.Duration
}

// Open creates dir if needed and opens the database inside it.
func Open(dir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create bolt directory %s", dir)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	db, err := bolt.Open(filepath.Join(dir, FileName), 0o600, &bolt.Options{
		Timeout: opts.Timeout,
		NoSync:  opts.NoSync,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt database in %s", dir)
	}

	s := &Store{db: db, bucket: []byte(bucketName)}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create images bucket")
	}
	return s, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
	return errors.Wrapf(err, "bolt put %s", key)
}

// Get copies the value out of the memory map before the transaction ends.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return store.ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err == store.ErrNotFound {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrapf(err, "bolt get %s", key)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	return errors.Wrapf(err, "bolt delete %s", key)
}

func (s *Store) Close() error {
	return s.db.Close()
}
