package stats

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagebench/benchmark"
	"imagebench/workload"
)

type memSink struct {
	mu      sync.Mutex
	batches []Record
	totals  []Record
}

func (m *memSink) RecordBatch(_ context.Context, r Record) {
	m.mu.Lock()
	m.batches = append(m.batches, r)
	m.mu.Unlock()
}

func (m *memSink) RecordTotal(_ context.Context, r Record) {
	m.mu.Lock()
	m.totals = append(m.totals, r)
	m.mu.Unlock()
}

func (m *memSink) Close() error { return nil }

func TestListenerForwardsEvents(t *testing.T) {
	sink := &memSink{}
	l := &Listener{Sink: sink, Backend: "bolt", Threads: 4, BatchSize: 10, Note: "ci"}

	start := time.Now()
	l.BatchDone(benchmark.BatchMetrics{Op: "write", Index: 2, Items: 10, Bytes: 100, Start: start, End: start.Add(15 * time.Millisecond)})
	l.PassDone(benchmark.Summary{Op: "write", Items: 25, Bytes: 250, Batches: 3, Elapsed: 40 * time.Millisecond})

	require.Len(t, sink.batches, 1)
	b := sink.batches[0]
	assert.Equal(t, "bolt", b.Backend)
	assert.Equal(t, 2, b.BatchNo)
	assert.Equal(t, int64(10), b.Items)
	assert.Equal(t, int64(15), b.Millis)
	assert.Equal(t, 4, b.Threads)
	assert.Equal(t, 10, b.BatchSize)
	assert.Positive(t, b.CPUCores)

	require.Len(t, sink.totals, 1)
	assert.Equal(t, int64(25), sink.totals[0].Items)
	assert.Equal(t, int64(40), sink.totals[0].Millis)
	assert.Equal(t, "ci", sink.totals[0].Note)
}

func TestListenerWithExecutor(t *testing.T) {
	sink := &memSink{}
	exec := benchmark.NewExecutor(2, 2, benchmark.WithListener(&Listener{Sink: sink, Backend: "memory"}))
	items := []workload.Item{{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}, {Key: "e"}}

	_, err := exec.Run(context.Background(), benchmark.OpRead, items, benchmark.OperationFunc(
		func(context.Context, workload.Item) (int64, error) { return 7, nil }))
	require.NoError(t, err)

	require.Len(t, sink.batches, 3)
	for i, r := range sink.batches {
		assert.Equal(t, i+1, r.BatchNo)
		assert.Equal(t, "read", r.Op)
	}
	require.Len(t, sink.totals, 1)
	assert.Equal(t, int64(35), sink.totals[0].Bytes)
}

func TestHost(t *testing.T) {
	h := Host()
	assert.Positive(t, h.CPUCores)
	assert.GreaterOrEqual(t, h.HeapMB, int64(0))
}

func TestListenerSamplesHostOncePerPass(t *testing.T) {
	sink := &memSink{}
	samples := 0
	l := &Listener{Sink: sink, Backend: "bolt", sampler: func() HostInfo {
		samples++
		return HostInfo{CPUCores: 4, HeapMB: int64(samples)}
	}}
	exec := benchmark.NewExecutor(2, 2, benchmark.WithListener(l))
	items := []workload.Item{{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}, {Key: "e"}}
	op := benchmark.OperationFunc(func(context.Context, workload.Item) (int64, error) { return 1, nil })

	_, err := exec.Run(context.Background(), benchmark.OpWrite, items, op)
	require.NoError(t, err)
	_, err = exec.Run(context.Background(), benchmark.OpRead, items, op)
	require.NoError(t, err)

	assert.Equal(t, 2, samples)
	require.Len(t, sink.batches, 6)
	for _, r := range sink.batches[:3] {
		assert.Equal(t, int64(1), r.HeapMB)
	}
	for _, r := range sink.batches[3:] {
		assert.Equal(t, int64(2), r.HeapMB)
	}
	require.Len(t, sink.totals, 2)
	assert.Equal(t, int64(1), sink.totals[0].HeapMB)
	assert.Equal(t, int64(2), sink.totals[1].HeapMB)
}

func TestListenerSkipsNopSink(t *testing.T) {
	samples := 0
	l := &Listener{Sink: NopSink{}, sampler: func() HostInfo {
		samples++
		return HostInfo{}
	}}

	l.BatchDone(benchmark.BatchMetrics{Op: "write", Index: 1, Items: 1})
	l.PassDone(benchmark.Summary{Op: "write", Items: 1})
	assert.Zero(t, samples)
}
