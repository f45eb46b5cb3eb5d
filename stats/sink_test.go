package stats

import (
	"context"
	"database/sql"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagebench/errors"
)

func newMockSink(t *testing.T) (*SQLSink, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec(regexp.QuoteMeta(Postgres.CreateTable)).WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewSQLSink(context.Background(), db, Postgres)
	require.NoError(t, err)
	return s, mock
}

func TestRecordBatchInsertsRow(t *testing.T) {
	s, mock := newMockSink(t)

	mock.ExpectExec(regexp.QuoteMeta(Postgres.Insert)).
		WithArgs(s.RunID(), sqlmock.AnyArg(), "bolt", "write", 2, int64(10), int64(4096), int64(12), 4, 10, 8, int64(3), "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	s.RecordBatch(context.Background(), Record{
		Backend: "bolt", Op: "write", BatchNo: 2, Items: 10, Bytes: 4096, Millis: 12,
		Threads: 4, BatchSize: 10, CPUCores: 8, HeapMB: 3,
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordTotalUsesBatchZero(t *testing.T) {
	s, mock := newMockSink(t)

	mock.ExpectExec(regexp.QuoteMeta(Postgres.Insert)).
		WithArgs(s.RunID(), sqlmock.AnyArg(), "pg", "read", 0, int64(25), int64(1), int64(1), 1, 1, 1, int64(1), "total").
		WillReturnResult(sqlmock.NewResult(1, 1))

	s.RecordTotal(context.Background(), Record{
		Backend: "pg", Op: "read", BatchNo: 3, Items: 25, Bytes: 1, Millis: 1,
		Threads: 1, BatchSize: 1, CPUCores: 1, HeapMB: 1, Note: "total",
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertFailureIsSwallowed(t *testing.T) {
	s, mock := newMockSink(t)

	mock.ExpectExec(regexp.QuoteMeta(Postgres.Insert)).WillReturnError(errors.New("relation does not exist"))

	assert.NotPanics(t, func() {
		s.RecordBatch(context.Background(), Record{Backend: "tikv", Op: "write", BatchNo: 1})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTableFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(Postgres.CreateTable)).WillReturnError(errors.New("permission denied"))
	_, err = NewSQLSink(context.Background(), db, Postgres)
	require.Error(t, err)
	assert.NotEmpty(t, errors.FlattenHints(err))
}

func TestSQLiteSink(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "stats.db")
	s, err := Open(context.Background(), SQLite, dsn)
	require.NoError(t, err)

	ctx := context.Background()
	s.RecordBatch(ctx, Record{Backend: "bolt", Op: "write", BatchNo: 1, Items: 10})
	s.RecordBatch(ctx, Record{Backend: "bolt", Op: "write", BatchNo: 2, Items: 5})
	s.RecordTotal(ctx, Record{Backend: "bolt", Op: "write", Items: 15})
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	defer db.Close()

	var rows, totals int
	var items int64
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), SUM(items) FROM bench_stats WHERE run_id = ?`, s.RunID()).Scan(&rows, &items))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM bench_stats WHERE batch_no = 0`).Scan(&totals))
	assert.Equal(t, 3, rows)
	assert.Equal(t, int64(30), items)
	assert.Equal(t, 1, totals)
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	d, err = DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	_, err = DialectFor("oracle")
	assert.Error(t, err)
}

func TestNopSink(t *testing.T) {
	var s Sink = NopSink{}
	s.RecordBatch(context.Background(), Record{})
	s.RecordTotal(context.Background(), Record{})
	assert.NoError(t, s.Close())
}
