package stats

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo is a snapshot of the machine the benchmark runs on.
type HostInfo struct {
	CPUCores int
	// TotalMemMB is 0 when the platform does not report it.
	TotalMemMB uint64
	HeapMB     int64
}

// Host samples the logical core count, total memory and the current heap
// allocation.
func Host() HostInfo {
	h := HostInfo{CPUCores: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		h.CPUCores = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.TotalMemMB = vm.Total / (1024 * 1024)
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	h.HeapMB = int64(ms.HeapAlloc / (1024 * 1024))
	return h
}
