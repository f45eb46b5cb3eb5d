// Package pg implements store.Store on a relational database through
// database/sql. PostgreSQL is the benchmarked target; SQLite is supported
// for local runs.
package pg

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"imagebench/errors"
	"imagebench/store"
)

// Dialect holds the driver name and the statements for one database flavour.
type Dialect struct {
	Driver      string
	CreateTable string
	Upsert      string
	Select      string
	Delete      string
}

var (
	// Postgres targets PostgreSQL (and wire-compatible databases) via lib/pq.
	Postgres = Dialect{
		Driver:      "postgres",
		CreateTable: `CREATE TABLE IF NOT EXISTS images (id TEXT PRIMARY KEY, data BYTEA)`,
		Upsert:      `INSERT INTO images (id, data) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		Select:      `SELECT data FROM images WHERE id = $1`,
		Delete:      `DELETE FROM images WHERE id = $1`,
	}

	// SQLite targets a local database file via mattn/go-sqlite3.
	SQLite = Dialect{
		Driver:      "sqlite3",
		CreateTable: `CREATE TABLE IF NOT EXISTS images (id TEXT PRIMARY KEY, data BLOB)`,
		Upsert:      `INSERT INTO images (id, data) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET data = excluded.data`,
		Select:      `SELECT data FROM images WHERE id = ?`,
		Delete:      `DELETE FROM images WHERE id = ?`,
	}

	// Compile-time check for ensuring Store implements store.Store.
	_ store.Store = (*Store)(nil)
)

// DialectFor returns the dialect registered for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "", Postgres.Driver, "pg", "postgresql":
		return Postgres, nil
	case SQLite.Driver, "sqlite":
		return SQLite, nil
	default:
		return Dialect{}, errors.Newf("unsupported sql driver %q", driver)
	}
}

// Store writes each image with its own transaction on a pooled connection.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to dsn, sizes the pool and ensures the images table exists.
// SQLite allows a single writer, so its pool is capped at one connection.
func Open(ctx context.Context, dialect Dialect, dsn string, poolSize int) (*Store, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dialect.Driver)
	}

	if dialect.Driver == SQLite.Driver || poolSize < 1 {
		poolSize = 1
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.WithHint(errors.Wrapf(err, "connect to %s", dialect.Driver),
			"check that the database is reachable and the DSN is correct")
	}

	s, err := New(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database handle and creates the images table if absent.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		return nil, errors.Wrap(err, "create images table")
	}
	return &Store{db: db, dialect: dialect}, nil
}

// Put upserts value so that re-running a write pass overwrites rows.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "begin upsert %s", key)
	}
	if _, err := tx.ExecContext(ctx, s.dialect.Upsert, key, value); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "upsert %s", key)
	}
	return errors.Wrapf(tx.Commit(), "commit upsert %s", key)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, s.dialect.Select, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", key)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Delete, key)
	return errors.Wrapf(err, "delete %s", key)
}

// Close terminates the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
