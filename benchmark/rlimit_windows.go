//go:build windows
// +build windows

package benchmark

import (
	"runtime/debug"

	"imagebench/logger"
)

// SetMaxResources adjusts the Go thread cap; Windows has no open file limit
// to raise.
func SetMaxResources() error {
	const maxThreads = 8000
	debug.SetMaxThreads(maxThreads)

	logger.Named("rlimit").Debugw("resource limits raised", "threads", maxThreads)
	return nil
}
