package ocistore

import (
	"testing"

	gc "gopkg.in/check.v1"

	"imagebench/store/storetest"
)

var _ = gc.Suite(new(FakeClientStoreTestSuite))

func TestSuites(t *testing.T) { gc.TestingT(t) }

type FakeClientStoreTestSuite struct {
	storetest.SuiteBase
}

func (s *FakeClientStoreTestSuite) SetUpTest(c *gc.C) {
	s.SetStore(New(&fakeClient{objects: map[string][]byte{}}, "ns", "bench"))
}
