package main

import (
	"context"
	"io"

	"imagebench/benchmark"
	"imagebench/config"
	"imagebench/errors"
	"imagebench/logger"
	"imagebench/progress"
	"imagebench/report"
	"imagebench/stats"
	"imagebench/workload"
)

// runBenchmark generates the images if needed, opens the backend and runs
// the write and read passes.
func runBenchmark(ctx context.Context, b backend, params benchmark.BenchmarkParams, s *config.Settings, stdout, stderr io.Writer) (benchmark.Results, error) {
	log := logger.Named(b.name)
	params.RateLimit = s.RateLimit
	params.Cleanup = s.Cleanup

	if err := benchmark.SetMaxResources(); err != nil {
		log.Warnw("could not raise resource limits", "error", err)
	}

	rep := report.New(stdout, b.name, !s.NoColor)
	rep.Banner(params, stats.Host())

	var opts []benchmark.Option
	if !s.NoProgress {
		opts = append(opts, benchmark.WithProgress(progress.Factory(stderr)))
	}

	gen := benchmark.NewExecutor(params.BatchSize, params.Concurrency, append(opts, benchmark.WithListener(rep))...)
	if _, err := benchmark.EnsureImages(ctx, gen, params.ImagesDir, params.ObjectCount, params.PixelsPerSide); err != nil {
		return benchmark.Results{}, err
	}

	items, err := workload.List(params.ImagesDir, params.ObjectCount)
	if err != nil {
		return benchmark.Results{}, err
	}
	if len(items) == 0 {
		log.Warnw("no images to benchmark", "dir", params.ImagesDir, "count", params.ObjectCount)
	}
	rep.Planned(len(items), workload.PlannedBytes(items))

	st, err := b.open(ctx, params, s)
	if err != nil {
		return benchmark.Results{}, errors.Wrapf(err, "open %s backend", b.name)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warnw("closing backend failed", "error", err)
		}
	}()

	sink := openSink(ctx, s)
	defer sink.Close()

	listeners := benchmark.Listeners{rep, &stats.Listener{
		Sink:      sink,
		Backend:   b.name,
		Threads:   params.Concurrency,
		BatchSize: params.BatchSize,
		Note:      s.StatsNote,
		Ctx:       ctx,
	}}
	exec := benchmark.NewExecutor(params.BatchSize, params.Concurrency,
		append(opts, benchmark.WithListener(listeners), benchmark.WithRateLimit(params.RateLimit))...)

	log.Debugw("starting passes", "items", len(items), "concurrency", exec.Concurrency(), "batch", exec.BatchSize())
	return benchmark.RunMixedBenchmark(ctx, exec, items, st, params.Cleanup)
}

// openSink returns the configured stats sink. Stats are best effort, so a
// sink that cannot be opened is replaced by a NopSink.
func openSink(ctx context.Context, s *config.Settings) stats.Sink {
	if s.StatsDSN == "" {
		return stats.NopSink{}
	}
	log := logger.Named("stats")

	dialect, err := stats.DialectFor(s.StatsDriver)
	if err == nil {
		var sink *stats.SQLSink
		sink, err = stats.Open(ctx, dialect, s.StatsDSN)
		if err == nil {
			log.Infow("recording stats", "driver", dialect.Driver, "run_id", sink.RunID())
			return sink
		}
	}
	log.Warnw("stats disabled", "error", err)
	return stats.NopSink{}
}
