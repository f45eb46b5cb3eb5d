// Package report turns executor metrics into throughput figures and prints
// them.
package report

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"imagebench/benchmark"
	"imagebench/stats"
)

const mib = 1024 * 1024

// Rate holds the figures derived from an item count, a byte count and an
// elapsed time.
type Rate struct {
	MBPerSec    float64
	ItemsPerSec float64
	// AvgMillis is the mean wall-clock time per item.
	AvgMillis float64
}

// Rates derives throughput. Every figure is 0 when elapsed is 0, and
// AvgMillis is 0 when there are no items.
func Rates(items, bytes int64, elapsed time.Duration) Rate {
	var r Rate
	secs := elapsed.Seconds()
	if secs <= 0 {
		return r
	}
	r.MBPerSec = float64(bytes) / mib / secs
	r.ItemsPerSec = float64(items) / secs
	if items > 0 {
		r.AvgMillis = float64(elapsed.Microseconds()) / 1000 / float64(items)
	}
	return r
}

// Reporter prints batch lines and pass summaries. It is safe for concurrent
// use; each event is written in one locked call, so lines never interleave.
type Reporter struct {
	mu      sync.Mutex
	w       io.Writer
	backend string

	title *color.Color
	value *color.Color
	dim   *color.Color
}

var _ benchmark.Listener = (*Reporter)(nil)

// New returns a Reporter writing to w. Colour escapes are only emitted when
// colored is set.
func New(w io.Writer, backend string, colored bool) *Reporter {
	r := &Reporter{
		w:       w,
		backend: backend,
		title:   color.New(color.FgCyan, color.Bold),
		value:   color.New(color.FgGreen),
		dim:     color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.title, r.value, r.dim} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// BatchDone prints one line per finished batch.
func (r *Reporter) BatchDone(m benchmark.BatchMetrics) {
	rate := Rates(int64(m.Items), m.Bytes, m.Elapsed())

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%s batch #%d: items=%d, size=%.2f MB, time=%d ms, items/s=%.2f\n",
		m.Op, m.Index, m.Items, float64(m.Bytes)/mib, m.Elapsed().Milliseconds(), rate.ItemsPerSec)
}

// PassDone prints the summary block of a pass.
func (r *Reporter) PassDone(s benchmark.Summary) {
	r.DisplayResults(s)
}

// DisplayResults shows the summary of one pass.
func (r *Reporter) DisplayResults(s benchmark.Summary) {
	rate := Rates(s.Items, s.Bytes, s.Elapsed)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.title.Fprintf(r.w, "%s %s results:\n", r.backend, s.Op)
	fmt.Fprintf(r.w, "  Duration:          %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(r.w, "  Items processed:   %d in %d batches\n", s.Items, s.Batches)
	fmt.Fprintf(r.w, "  Size:              %.2f MB\n", float64(s.Bytes)/mib)
	r.value.Fprintf(r.w, "  Data throughput:   %.2f MB/s\n", rate.MBPerSec)
	r.value.Fprintf(r.w, "  Item throughput:   %.2f items/s\n", rate.ItemsPerSec)
	fmt.Fprintf(r.w, "  Avg per item:      %.3f ms\n", rate.AvgMillis)
}

// Banner prints the run configuration.
func (r *Reporter) Banner(p benchmark.BenchmarkParams, host stats.HostInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.title.Fprintf(r.w, "imagebench %s\n", r.backend)
	fmt.Fprintf(r.w, "  target=%s images=%s count=%d size=%dpx\n",
		p.Target, p.ImagesDir, p.ObjectCount, p.PixelsPerSide)
	fmt.Fprintf(r.w, "  concurrency=%d batch=%d rate-limit=%d cleanup=%t\n",
		p.Concurrency, p.BatchSize, p.RateLimit, p.Cleanup)
	r.dim.Fprintf(r.w, "  host: cpus=%d mem=%d MB heap=%d MB\n", host.CPUCores, host.TotalMemMB, host.HeapMB)
}

// Planned prints the size of the workload about to run.
func (r *Reporter) Planned(files int, bytes int64) {
	avgKB := 0.0
	if files > 0 {
		avgKB = float64(bytes) / 1024 / float64(files)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "Planned workload: files=%d, total=%.2f MB, avg=%.2f KB/image\n",
		files, float64(bytes)/mib, avgKB)
}
