package benchmark

import (
	"fmt"
	"time"
)

// BatchMetrics describes one finished batch.
type BatchMetrics struct {
	Op string
	// Index is 1-based and follows the order of the item list.
	Index int
	Items int
	Bytes int64
	Start time.Time
	End   time.Time
}

// Elapsed is the wall-clock time from submitting the batch to its last item
// completing.
func (m BatchMetrics) Elapsed() time.Duration {
	return m.End.Sub(m.Start)
}

// Summary is the outcome of one full pass over the item list.
type Summary struct {
	Op      string
	Items   int64
	Bytes   int64
	Batches int
	// Elapsed runs from the first batch's start to the last batch's end.
	Elapsed time.Duration
}

// Listener observes a pass. BatchDone is called synchronously after each
// batch, in batch order; PassDone once the pass completed successfully.
type Listener interface {
	BatchDone(m BatchMetrics)
	PassDone(s Summary)
}

// Listeners fans events out to several listeners in order.
type Listeners []Listener

func (ls Listeners) BatchDone(m BatchMetrics) {
	for _, l := range ls {
		l.BatchDone(m)
	}
}

func (ls Listeners) PassDone(s Summary) {
	for _, l := range ls {
		l.PassDone(s)
	}
}

type nopListener struct{}

func (nopListener) BatchDone(BatchMetrics) {}
func (nopListener) PassDone(Summary)       {}

// JobError identifies the item whose operation aborted a pass.
type JobError struct {
	Op    string
	Batch int
	Key   string
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s batch #%d: item %s: %v", e.Op, e.Batch, e.Key, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }
