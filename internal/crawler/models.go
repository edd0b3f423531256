package crawler

import (
	"sync/atomic"
	"time"
)

// Stats summarizes one crawl run
type Stats struct {
	Visited    int64         // Pages fetched successfully and reported
	Filtered   int64         // Items dropped as already visited or too deep
	Failed     int64         // Items whose fetch or bookkeeping failed
	Discovered int64         // Child items pushed onto the frontier
	StartTime  time.Time     // When the run started
	Duration   time.Duration // Wall time of the run
}

// counters are the live, shared form of Stats
type counters struct {
	visited    atomic.Int64
	filtered   atomic.Int64
	failed     atomic.Int64
	discovered atomic.Int64
}

func (c *counters) snapshot(start time.Time) Stats {
	return Stats{
		Visited:    c.visited.Load(),
		Filtered:   c.filtered.Load(),
		Failed:     c.failed.Load(),
		Discovered: c.discovered.Load(),
		StartTime:  start,
		Duration:   time.Since(start),
	}
}
