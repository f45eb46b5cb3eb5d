//go:build linux
// +build linux

package benchmark

import (
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"imagebench/errors"
	"imagebench/logger"
)

// SetMaxResources raises the open file limit so a batch can hold one backend
// handle per worker, and lifts the Go thread cap on large hosts.
func SetMaxResources() error {
	const threadLimit = 10000
	rLimit := unix.Rlimit{}

	err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		return errors.Wrap(err, "get open file limit")
	}

	rLimit.Cur = rLimit.Max
	err = unix.Setrlimit(unix.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		return errors.Wrap(err, "set open file limit")
	}

	threads, err := readLinuxMaxThreads()
	if err != nil {
		return err
	}

	// Allow up to 90% of the kernel's thread limit
	maxThreads := (int(threads) * 90) / 100
	if maxThreads > threadLimit {
		debug.SetMaxThreads(maxThreads)
	}

	logger.Named("rlimit").Debugw("resource limits raised", "nofile", rLimit.Cur, "threads", maxThreads)
	return nil
}

// readLinuxMaxThreads reads the max threads from /proc/sys/kernel/threads-max.
func readLinuxMaxThreads() (uint32, error) {
	data, err := os.ReadFile("/proc/sys/kernel/threads-max")
	if err != nil {
		return 0, errors.Wrap(err, "read /proc/sys/kernel/threads-max")
	}
	trimmed := strings.TrimSpace(string(data))
	threads, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "parse max threads value")
	}
	return uint32(threads), nil
}
