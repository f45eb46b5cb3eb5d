package pg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gc "gopkg.in/check.v1"

	"imagebench/store/storetest"
)

var (
	_ = gc.Suite(new(SQLiteStoreTestSuite))
	_ = gc.Suite(new(PostgresStoreTestSuite))
)

func TestSuites(t *testing.T) { gc.TestingT(t) }

// SQLiteStoreTestSuite runs the shared store tests against a temporary
// SQLite file.
type SQLiteStoreTestSuite struct {
	storetest.SuiteBase
	st *Store
}

func (s *SQLiteStoreTestSuite) SetUpTest(c *gc.C) {
	dsn := "file:" + filepath.Join(c.MkDir(), "images.db") + "?_busy_timeout=5000"
	st, err := Open(context.Background(), SQLite, dsn, 8)
	c.Assert(err, gc.IsNil)
	s.st = st
	s.SetStore(st)
}

func (s *SQLiteStoreTestSuite) TearDownTest(c *gc.C) {
	c.Assert(s.st.Close(), gc.IsNil)
}

// PostgresStoreTestSuite needs a reachable server in IMAGEBENCH_PG_DSN.
type PostgresStoreTestSuite struct {
	storetest.SuiteBase
	st *Store
}

func (s *PostgresStoreTestSuite) SetUpSuite(c *gc.C) {
	dsn := os.Getenv("IMAGEBENCH_PG_DSN")
	if dsn == "" {
		c.Skip("Missing IMAGEBENCH_PG_DSN envvar; skipping postgres-backed store test suite")
	}

	st, err := Open(context.Background(), Postgres, dsn, 8)
	c.Assert(err, gc.IsNil)
	s.st = st
	s.SetStore(st)
}

func (s *PostgresStoreTestSuite) SetUpTest(c *gc.C) {
	s.flushDB(c)
}

func (s *PostgresStoreTestSuite) TearDownSuite(c *gc.C) {
	if s.st != nil {
		s.flushDB(c)
		c.Assert(s.st.Close(), gc.IsNil)
	}
}

func (s *PostgresStoreTestSuite) flushDB(c *gc.C) {
	_, err := s.st.db.Exec("DELETE FROM images")
	c.Assert(err, gc.IsNil)
}
