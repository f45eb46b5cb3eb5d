package stats

import (
	"context"

	"imagebench/benchmark"
)

// Listener forwards executor events to a Sink.
type Listener struct {
	Sink      Sink
	Backend   string
	Threads   int
	BatchSize int
	Note      string
	// Ctx bounds the inserts; it defaults to context.Background.
	Ctx context.Context

	// host is sampled at the first batch of a pass and reused until the
	// pass ends.
	host    *HostInfo
	sampler func() HostInfo
}

var _ benchmark.Listener = (*Listener)(nil)

func (l *Listener) BatchDone(m benchmark.BatchMetrics) {
	if l.discards() {
		return
	}
	if m.Index == 1 {
		l.host = nil
	}
	r := l.record(m.Op, int64(m.Items), m.Bytes, m.Elapsed().Milliseconds())
	r.BatchNo = m.Index
	l.Sink.RecordBatch(l.ctx(), r)
}

func (l *Listener) PassDone(s benchmark.Summary) {
	if l.discards() {
		return
	}
	l.Sink.RecordTotal(l.ctx(), l.record(s.Op, s.Items, s.Bytes, s.Elapsed.Milliseconds()))
	l.host = nil
}

// discards reports whether records would be dropped anyway, so the host is
// not sampled for nothing.
func (l *Listener) discards() bool {
	switch l.Sink.(type) {
	case nil, NopSink, *NopSink:
		return true
	}
	return false
}

func (l *Listener) record(op string, items, bytes, millis int64) Record {
	if l.host == nil {
		sample := l.sampler
		if sample == nil {
			sample = Host
		}
		h := sample()
		l.host = &h
	}
	h := *l.host
	return Record{
		Backend:   l.Backend,
		Op:        op,
		Items:     items,
		Bytes:     bytes,
		Millis:    millis,
		Threads:   l.Threads,
		BatchSize: l.BatchSize,
		CPUCores:  h.CPUCores,
		HeapMB:    h.HeapMB,
		Note:      l.Note,
	}
}

func (l *Listener) ctx() context.Context {
	if l.Ctx == nil {
		return context.Background()
	}
	return l.Ctx
}
