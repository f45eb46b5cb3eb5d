package progress

import (
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/minio/pkg/console"

	"imagebench/benchmark"
)

// ProgressBar wrapper structure
type ProgressBar struct {
	*pb.ProgressBar
}

// NewProgressBar - instantiate a progress bar writing to w.
func NewProgressBar(total int64, w io.Writer) *ProgressBar {
	// Progress bar specific theme customization.
	console.SetColor("Bar", color.New(color.FgGreen, color.Bold))

	bar := pb.New64(total)
	bar.SetWriter(w)

	// Customize the refresh rate and behavior
	bar.SetRefreshRate(time.Millisecond * 125)
	bar.SetTemplateString(`{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`)

	bar.Start()

	return &ProgressBar{ProgressBar: bar}
}

// SetCaption sets the caption of the progress bar.
func (p *ProgressBar) SetCaption(caption string) *ProgressBar {
	p.ProgressBar.Set("prefix", console.Colorize("Bar", caption))
	return p
}

// Increment advances the bar by one item.
func (p *ProgressBar) Increment() {
	p.ProgressBar.Increment()
}

// Finish stops refreshing and prints the final state.
func (p *ProgressBar) Finish() {
	p.ProgressBar.Finish()
}

// Factory returns a benchmark.ProgressFactory that draws one captioned bar
// per pass on w.
func Factory(w io.Writer) benchmark.ProgressFactory {
	return func(op string, total int) benchmark.Progress {
		return NewProgressBar(int64(total), w).SetCaption(op)
	}
}
