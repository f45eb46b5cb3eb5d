// Package storetest provides a re-usable set of tests that can be executed
// against any store.Store implementation.
package storetest

import (
	"bytes"
	"context"

	"github.com/google/uuid"
	gc "gopkg.in/check.v1"

	"imagebench/benchmark"
	"imagebench/errors"
	"imagebench/store"
	"imagebench/workload"
)

// SuiteBase defines a re-usable set of store related tests. Embedding suites
// call SetStore before each test.
type SuiteBase struct {
	st store.Store
}

// SetStore sets the store under test.
func (s *SuiteBase) SetStore(st store.Store) {
	s.st = st
}

// key returns a key that no other test uses, so suites running against a
// shared cluster do not need a flush between tests.
func key(name string) string {
	return uuid.NewString() + "/" + name
}

func (s *SuiteBase) TestPutGetRoundTrip(c *gc.C) {
	ctx := context.Background()
	k := key("img_000001.png")
	value := []byte("\x89PNG\r\n\x1a\nnot really an image")

	c.Assert(s.st.Put(ctx, k, value), gc.IsNil)

	got, err := s.st.Get(ctx, k)
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.DeepEquals, value)
}

func (s *SuiteBase) TestPutCopiesOrConsumesValue(c *gc.C) {
	ctx := context.Background()
	k := key("img_000002.png")
	buf := []byte("original")

	c.Assert(s.st.Put(ctx, k, buf), gc.IsNil)
	copy(buf, "clobbere")

	got, err := s.st.Get(ctx, k)
	c.Assert(err, gc.IsNil)
	c.Assert(string(got), gc.Equals, "original", gc.Commentf("stored value must not alias the caller's buffer"))
}

func (s *SuiteBase) TestPutOverwritesExistingKey(c *gc.C) {
	ctx := context.Background()
	k := key("img_000003.png")

	c.Assert(s.st.Put(ctx, k, []byte("first")), gc.IsNil)
	c.Assert(s.st.Put(ctx, k, []byte("second, longer")), gc.IsNil)

	got, err := s.st.Get(ctx, k)
	c.Assert(err, gc.IsNil)
	c.Assert(string(got), gc.Equals, "second, longer")
}

func (s *SuiteBase) TestGetMissingKey(c *gc.C) {
	_, err := s.st.Get(context.Background(), key("never-written.png"))
	c.Assert(errors.Is(err, store.ErrNotFound), gc.Equals, true, gc.Commentf("got %v", err))
}

func (s *SuiteBase) TestDelete(c *gc.C) {
	ctx := context.Background()
	k := key("img_000004.png")

	c.Assert(s.st.Put(ctx, k, []byte("doomed")), gc.IsNil)
	c.Assert(s.st.Delete(ctx, k), gc.IsNil)

	_, err := s.st.Get(ctx, k)
	c.Assert(errors.Is(err, store.ErrNotFound), gc.Equals, true)

	// Deleting an absent key is not an error.
	c.Assert(s.st.Delete(ctx, k), gc.IsNil)
}

func (s *SuiteBase) TestWriteReadPasses(c *gc.C) {
	ctx := context.Background()
	dir := c.MkDir()
	exec := benchmark.NewExecutor(4, 3)

	_, err := benchmark.EnsureImages(ctx, exec, dir, 10, 24)
	c.Assert(err, gc.IsNil)
	items, err := workload.List(dir, -1)
	c.Assert(err, gc.IsNil)
	c.Assert(items, gc.HasLen, 10)
	planned := workload.PlannedBytes(items)

	// Running twice exercises the upsert path on every key.
	for run := 0; run < 2; run++ {
		res, err := benchmark.RunMixedBenchmark(ctx, exec, items, s.st, false)
		c.Assert(err, gc.IsNil)
		c.Assert(res.Write.Items, gc.Equals, int64(10))
		c.Assert(res.Write.Bytes, gc.Equals, planned)
		c.Assert(res.Read.Items, gc.Equals, int64(10))
		c.Assert(res.Read.Bytes, gc.Equals, planned, gc.Commentf("run %d", run))
		c.Assert(res.Write.Batches, gc.Equals, 3)
	}

	for _, it := range items {
		want, release, err := it.Load()
		c.Assert(err, gc.IsNil)
		got, err := s.st.Get(ctx, it.Key)
		c.Assert(err, gc.IsNil)
		c.Assert(bytes.Equal(got, want), gc.Equals, true, gc.Commentf("payload mismatch for %s", it.Key))
		release()
	}

	res, err := benchmark.RunMixedBenchmark(ctx, exec, items, s.st, true)
	c.Assert(err, gc.IsNil)
	c.Assert(res.Delete.Items, gc.Equals, int64(10))
	_, err = s.st.Get(ctx, items[0].Key)
	c.Assert(errors.Is(err, store.ErrNotFound), gc.Equals, true)
}
