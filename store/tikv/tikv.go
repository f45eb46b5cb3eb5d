// Package tikv implements store.Store on a TiKV cluster through the raw
// key-value API.
package tikv

import (
	"context"

	"github.com/tikv/client-go/v2/config"
	"github.com/tikv/client-go/v2/rawkv"

	"imagebench/errors"
	"imagebench/store"
)

// Compile-time check for ensuring Store implements store.Store.
var _ store.Store = (*Store)(nil)

// rawClient is the subset of the raw KV client the store relies on.
type rawClient interface {
	Put(ctx context.Context, key, value []byte) error
	Get(ctx context.Context, key []byte) ([]byte, error)
	Delete(ctx context.Context, key []byte) error
	Close() error
}

// Store issues one raw put/get per call. The client multiplexes requests
// over its region connections, so each call is an independent request.
type Store struct {
	client rawClient
}

// Open connects to the placement driver endpoints in pdAddrs.
func Open(ctx context.Context, pdAddrs []string) (*Store, error) {
	c, err := rawkv.NewClient(ctx, pdAddrs, config.Security{})
	if err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "connect to tikv pd %v", pdAddrs),
			"check that the placement driver address is reachable")
	}
	return &Store{client: rawkvClient{c: c}}, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return errors.Wrapf(s.client.Put(ctx, []byte(key), value), "tikv put %s", key)
}

// Get maps the client's nil value for a missing key to store.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, []byte(key))
	if err != nil {
		return nil, errors.Wrapf(err, "tikv get %s", key)
	}
	if v == nil {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(s.client.Delete(ctx, []byte(key)), "tikv delete %s", key)
}

func (s *Store) Close() error {
	return s.client.Close()
}

type rawkvClient struct {
	c *rawkv.Client
}

func (r rawkvClient) Put(ctx context.Context, key, value []byte) error {
	return r.c.Put(ctx, key, value)
}

func (r rawkvClient) Get(ctx context.Context, key []byte) ([]byte, error) {
	return r.c.Get(ctx, key)
}

func (r rawkvClient) Delete(ctx context.Context, key []byte) error {
	return r.c.Delete(ctx, key)
}

func (r rawkvClient) Close() error {
	return r.c.Close()
}
