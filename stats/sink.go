// Package stats persists batch and pass metrics to a relational table. The
// sink is best effort: a failed insert is logged and never reaches the
// benchmark.
package stats

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"imagebench/errors"
	"imagebench/logger"
)

// Record is one row of bench_stats. BatchNo 0 marks a pass total.
type Record struct {
	Backend   string
	Op        string
	BatchNo   int
	Items     int64
	Bytes     int64
	Millis    int64
	Threads   int
	BatchSize int
	CPUCores  int
	HeapMB    int64
	Note      string
}

// Sink receives metric records.
type Sink interface {
	RecordBatch(ctx context.Context, r Record)
	RecordTotal(ctx context.Context, r Record)
	Close() error
}

// NopSink drops every record.
type NopSink struct{}

func (NopSink) RecordBatch(context.Context, Record) {}
func (NopSink) RecordTotal(context.Context, Record) {}
func (NopSink) Close() error                        { return nil }

// Dialect holds the statements for one database flavour.
type Dialect struct {
	Driver      string
	CreateTable string
	Insert      string
}

var (
	Postgres = Dialect{
		Driver: "postgres",
		CreateTable: `CREATE TABLE IF NOT EXISTS bench_stats (
	id BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	ts TIMESTAMPTZ DEFAULT now(),
	backend TEXT NOT NULL,
	op TEXT NOT NULL,
	batch_no INT,
	items BIGINT,
	bytes BIGINT,
	millis BIGINT,
	threads INT,
	batch_size INT,
	cpu_cores INT,
	heap_mb BIGINT,
	note TEXT)`,
		Insert: `INSERT INTO bench_stats (run_id, ts, backend, op, batch_no, items, bytes, millis, threads, batch_size, cpu_cores, heap_mb, note)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
	}

	SQLite = Dialect{
		Driver: "sqlite3",
		CreateTable: `CREATE TABLE IF NOT EXISTS bench_stats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	ts TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	backend TEXT NOT NULL,
	op TEXT NOT NULL,
	batch_no INT,
	items BIGINT,
	bytes BIGINT,
	millis BIGINT,
	threads INT,
	batch_size INT,
	cpu_cores INT,
	heap_mb BIGINT,
	note TEXT)`,
		Insert: `INSERT INTO bench_stats (run_id, ts, backend, op, batch_no, items, bytes, millis, threads, batch_size, cpu_cores, heap_mb, note)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	}

	_ Sink = (*SQLSink)(nil)
	_ Sink = NopSink{}
)

// DialectFor returns the dialect registered for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "", Postgres.Driver, "pg", "postgresql":
		return Postgres, nil
	case SQLite.Driver, "sqlite":
		return SQLite, nil
	default:
		return Dialect{}, errors.Newf("unsupported stats driver %q", driver)
	}
}

// SQLSink inserts one row per record. Every row of a run shares RunID.
type SQLSink struct {
	db      *sql.DB
	dialect Dialect
	runID   string
	log     *zap.SugaredLogger
	now     func() time.Time
}

// Open connects to dsn and ensures the bench_stats table exists.
func Open(ctx context.Context, dialect Dialect, dsn string) (*SQLSink, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open stats %s", dialect.Driver)
	}
	db.SetMaxOpenConns(4)
	if dialect.Driver == SQLite.Driver {
		db.SetMaxOpenConns(1)
	}

	s, err := NewSQLSink(ctx, db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLSink wraps an open database handle.
func NewSQLSink(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLSink, error) {
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "create bench_stats table"),
			"check --stats-dsn or leave it empty to disable stats")
	}
	return &SQLSink{
		db:      db,
		dialect: dialect,
		runID:   uuid.NewString(),
		log:     logger.Named("stats"),
		now:     time.Now,
	}, nil
}

// RunID identifies the rows written by this sink.
func (s *SQLSink) RunID() string { return s.runID }

func (s *SQLSink) RecordBatch(ctx context.Context, r Record) {
	_, err := s.db.ExecContext(ctx, s.dialect.Insert,
		s.runID, s.now().UTC(), r.Backend, r.Op, r.BatchNo, r.Items, r.Bytes, r.Millis,
		r.Threads, r.BatchSize, r.CPUCores, r.HeapMB, r.Note)
	if err != nil {
		s.log.Debugw("stats insert failed", "op", r.Op, "batch", r.BatchNo, "error", err)
	}
}

// RecordTotal stores a pass total as batch 0.
func (s *SQLSink) RecordTotal(ctx context.Context, r Record) {
	r.BatchNo = 0
	s.RecordBatch(ctx, r)
}

func (s *SQLSink) Close() error {
	return s.db.Close()
}
