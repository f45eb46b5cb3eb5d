package benchmark

import (
	"context"
	"os"

	"imagebench/errors"
	"imagebench/logger"
	"imagebench/workload"
)

// EnsureImages generates n synthetic images into dir unless it already holds
// at least n payload files. Generation runs through exec, so it is batched and
// reported like any other pass.
func EnsureImages(ctx context.Context, exec *Executor, dir string, n, pixelsPerSide int) (Summary, error) {
	if workload.Count(dir) >= n {
		return Summary{Op: OpGenerate}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Summary{}, errors.WithHint(errors.Wrapf(err, "create images directory %s", dir),
			"choose a writable directory with the images-dir argument")
	}

	logger.Named("generate").Infow("generating images", "dir", dir, "count", n, "pixels", pixelsPerSide)
	return exec.Run(ctx, OpGenerate, workload.Planned(dir, n), GenerateOp{PixelsPerSide: pixelsPerSide})
}
