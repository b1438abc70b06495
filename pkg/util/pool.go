package util

import "runtime"

// PoolSize returns the number of workers for jobs independent I/O-bound jobs.
//
// Formula: min(max(runtime.NumCPU(), 2), 16, jobs), at least 1.
// If override > 0 it replaces the CPU-derived size (still capped by jobs).
func PoolSize(jobs, override int) int {
	size := override
	if size <= 0 {
		size = max(runtime.NumCPU(), 2)
		size = min(size, 16)
	}
	if jobs > 0 && size > jobs {
		size = jobs
	}
	return max(size, 1)
}
