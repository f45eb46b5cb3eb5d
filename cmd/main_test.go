package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagebench/benchmark"
	"imagebench/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestMemoryBackendRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")

	out, err := execute(t, "memory", "6", "16", dir, "", "2", "4", "--no-progress", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "imagebench memory")
	assert.Contains(t, out, "generate batch #2: items=2")
	assert.Contains(t, out, "Planned workload: files=6")
	assert.Contains(t, out, "write batch #1: items=4")
	assert.Contains(t, out, "write batch #2: items=2")
	assert.Contains(t, out, "memory write results:")
	assert.Contains(t, out, "memory read results:")
	assert.NotContains(t, out, "memory delete results:")
}

func TestRunRecordsStats(t *testing.T) {
	tmp := t.TempDir()
	dsn := "file:" + filepath.Join(tmp, "stats.db")

	_, err := execute(t, "memory", "5", "16", filepath.Join(tmp, "images"), "", "2", "2",
		"--no-progress", "--no-color", "--cleanup", "--stats-driver", "sqlite3", "--stats-dsn", dsn)
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	defer db.Close()

	// write, read and delete: three batches and one total each.
	var rows, totals int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM bench_stats`).Scan(&rows))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM bench_stats WHERE batch_no = 0 AND backend = 'memory'`).Scan(&totals))
	assert.Equal(t, 12, rows)
	assert.Equal(t, 3, totals)
}

func TestUnreachableStatsDoesNotFailRun(t *testing.T) {
	tmp := t.TempDir()

	_, err := execute(t, "memory", "2", "16", filepath.Join(tmp, "images"), "", "1", "1",
		"--no-progress", "--stats-driver", "mssql", "--stats-dsn", "whatever")
	assert.NoError(t, err)
}

func TestBoltBackendRun(t *testing.T) {
	tmp := t.TempDir()

	out, err := execute(t, "bolt", "4", "16", filepath.Join(tmp, "images"), filepath.Join(tmp, "boltdata"), "2", "0",
		"--no-progress", "--no-color", "--bolt-no-sync")
	require.NoError(t, err)
	assert.Contains(t, out, "write batch #1: items=4")
	assert.Contains(t, out, "bolt read results:")
}

func TestSetupFailureIsReported(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := execute(t, "bolt", "2", "16", filepath.Join(tmp, "images"), filepath.Join(blocker, "boltdata"), "1", "1", "--no-progress")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open bolt backend")
}

func TestTooManyArgs(t *testing.T) {
	_, err := execute(t, "memory", "1", "2", "3", "4", "5", "6", "7")
	assert.Error(t, err)
}

func TestZeroCountRunsEmptyPasses(t *testing.T) {
	b := backends[len(backends)-1]
	require.Equal(t, "memory", b.name)

	dir := t.TempDir()
	gen := benchmark.NewExecutor(2, 2)
	_, err := benchmark.EnsureImages(context.Background(), gen, dir, 3, 16)
	require.NoError(t, err)

	params := benchmark.DefaultParams("memory", 1)
	params.ObjectCount = 0
	params.ImagesDir = dir

	var out bytes.Buffer
	res, err := runBenchmark(context.Background(), b, params, &config.Settings{NoProgress: true, NoColor: true}, &out, &out)
	require.NoError(t, err)
	assert.Equal(t, benchmark.Summary{Op: benchmark.OpWrite}, res.Write)
	assert.Equal(t, benchmark.Summary{Op: benchmark.OpRead}, res.Read)
	assert.Contains(t, out.String(), "Planned workload: files=0")
	assert.NotContains(t, out.String(), "write batch")
}

func TestZeroCountFromCommandLine(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")

	out, err := execute(t, "memory", "0", "16", dir, "", "2", "2", "--no-progress", "--no-color")
	require.NoError(t, err)
	assert.NotContains(t, out, "generate batch")
	assert.NotContains(t, out, "write batch")
	assert.Contains(t, out, "Planned workload: files=0")
}

func TestNegativeCountUsesExistingImages(t *testing.T) {
	dir := t.TempDir()
	_, err := benchmark.EnsureImages(context.Background(), benchmark.NewExecutor(5, 2), dir, 5, 16)
	require.NoError(t, err)

	out, err := execute(t, "memory", "--no-progress", "--no-color", "--", "-1", "16", dir, "", "2", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "write batch #1: items=5")
}

func TestEveryFlagIsBound(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	for name := range flagKeys {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	for _, b := range backends {
		cmd, _, err := root.Find([]string{b.name})
		require.NoError(t, err)
		assert.Equal(t, b.name, cmd.Name())
	}
}
