package benchmark

import (
	"runtime"
	"strconv"
)

// BenchmarkParams holds the parameters for one backend run
type BenchmarkParams struct {
	ObjectCount   int    // Number of images to write and read back
	PixelsPerSide int    // Width and height of each synthetic image
	ImagesDir     string // Directory holding the PNG payloads
	Target        string // Backend connection target: path, DSN, address or bucket
	Concurrency   int    // Workers per batch
	BatchSize     int    // Items per batch; <= 0 means one batch
	RateLimit     int    // Max job starts per second (0 means no limit)
	Cleanup       bool   // Delete the written keys after the read pass
}

// DefaultParams returns the defaults shared by every backend. Concurrency is
// max(2, cpuFactor * NumCPU).
func DefaultParams(target string, cpuFactor int) BenchmarkParams {
	return BenchmarkParams{
		ObjectCount:   100000,
		PixelsPerSide: 128,
		ImagesDir:     "images",
		Target:        target,
		Concurrency:   max(2, cpuFactor*runtime.NumCPU()),
		BatchSize:     10000,
	}
}

// ParamsFromArgs overlays the positional arguments
//
//	[count] [pixels] [images-dir] [target] [concurrency] [batch-size]
//
// on defaults. Missing or non-numeric values keep the default.
func ParamsFromArgs(args []string, defaults BenchmarkParams) BenchmarkParams {
	p := defaults
	p.ObjectCount = intArg(args, 0, p.ObjectCount)
	p.PixelsPerSide = intArg(args, 1, p.PixelsPerSide)
	p.ImagesDir = stringArg(args, 2, p.ImagesDir)
	p.Target = stringArg(args, 3, p.Target)
	p.Concurrency = intArg(args, 4, p.Concurrency)
	p.BatchSize = intArg(args, 5, p.BatchSize)
	return p
}

func intArg(args []string, idx, def int) int {
	if len(args) > idx {
		if v, err := strconv.Atoi(args[idx]); err == nil {
			return v
		}
	}
	return def
}

func stringArg(args []string, idx int, def string) string {
	if len(args) > idx && args[idx] != "" {
		return args[idx]
	}
	return def
}
