package benchmark

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"imagebench/errors"
	"imagebench/logger"
	"imagebench/workload"
)

// Progress is advanced once per completed item.
type Progress interface {
	Increment()
	Finish()
}

// ProgressFactory starts a progress indicator for a pass of total items.
type ProgressFactory func(op string, total int) Progress

type nopProgress struct{}

func (nopProgress) Increment() {}
func (nopProgress) Finish()    {}

// Executor runs an Operation over an item list in sequential batches. Items
// of one batch run concurrently on a worker pool that is created for the
// batch and fully drained before the next batch starts, so at most
// min(batch size, concurrency) operations are ever in flight.
type Executor struct {
	batchSize   int
	concurrency int
	limiter     *rate.Limiter
	listener    Listener
	progress    ProgressFactory
	log         *zap.SugaredLogger
	now         func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithListener receives batch and pass events.
func WithListener(l Listener) Option {
	return func(e *Executor) { e.listener = l }
}

// WithRateLimit caps job starts per second across the pool. Zero disables it.
func WithRateLimit(perSecond int) Option {
	return func(e *Executor) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, perSecond/10))
		}
	}
}

// WithProgress shows per-item progress for each pass.
func WithProgress(f ProgressFactory) Option {
	return func(e *Executor) { e.progress = f }
}

// NewExecutor returns an executor. A batchSize <= 0 puts every item in one
// batch; concurrency below 1 is raised to 1.
func NewExecutor(batchSize, concurrency int, opts ...Option) *Executor {
	e := &Executor{
		batchSize:   batchSize,
		concurrency: max(1, concurrency),
		listener:    nopListener{},
		progress:    func(string, int) Progress { return nopProgress{} },
		log:         logger.Named("executor"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BatchSize returns the configured batch size.
func (e *Executor) BatchSize() int { return e.batchSize }

// Concurrency returns the worker limit per batch.
func (e *Executor) Concurrency() int { return e.concurrency }

// Run applies op to every item and returns the pass summary.
//
// The first failing item aborts its batch: remaining items of that batch
// are not started, in-flight siblings see their context cancelled, and the
// pool is drained before Run returns. The failing batch is discarded, so the
// returned summary covers completed batches only and the error is a
// *JobError naming the item.
func (e *Executor) Run(ctx context.Context, op string, items []workload.Item, job Operation) (Summary, error) {
	summary := Summary{Op: op}
	batches := Partition(items, e.batchSize)
	if len(batches) == 0 {
		return summary, nil
	}

	bar := e.progress(op, len(items))
	defer bar.Finish()

	var first time.Time
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return summary, errors.Wrapf(err, "%s aborted before batch #%d", op, i+1)
		}

		m, err := e.runBatch(ctx, op, i+1, batch, job, bar)
		if i == 0 {
			first = m.Start
		}
		if err != nil {
			e.log.Debugw("batch failed", "op", op, "batch", i+1, "error", err)
			return summary, err
		}

		summary.Items += int64(m.Items)
		summary.Bytes += m.Bytes
		summary.Batches++
		summary.Elapsed = m.End.Sub(first)
		e.listener.BatchDone(m)
	}

	e.listener.PassDone(summary)
	return summary, nil
}

func (e *Executor) runBatch(ctx context.Context, op string, index int, batch []workload.Item, job Operation, bar Progress) (BatchMetrics, error) {
	m := BatchMetrics{Op: op, Index: index, Items: len(batch)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(e.concurrency, len(batch)))

	var bytes atomic.Int64
	e.log.Debugw("batch started", "op", op, "batch", index, "items", len(batch))
	m.Start = e.now()
	for _, item := range batch {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if e.limiter != nil {
				if err := e.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			n, err := job.Apply(gctx, item)
			if err != nil {
				return errors.WithStack(&JobError{Op: op, Batch: index, Key: item.Key, Err: err})
			}
			bytes.Add(n)
			bar.Increment()
			return nil
		})
	}
	err := g.Wait()
	m.End = e.now()
	if err != nil {
		return m, err
	}

	m.Bytes = bytes.Load()
	return m, nil
}
