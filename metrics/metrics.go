// Package metrics defines the observability surface the Locker coordinator
// and its adapters report through: counters for lock outcomes, histograms
// for latency, and gauges for live state.
package metrics

import "time"

// Metrics records lock-service operations. All methods must be safe for
// concurrent use.
type Metrics interface {
	// IncrAcquire counts one acquisition attempt for name. success reports
	// whether the lock reached Acquired; typ distinguishes Reader/Writer.
	IncrAcquire(name string, typ string, success bool)

	// IncrRelease counts one release for name.
	IncrRelease(name string, typ string, success bool)

	// IncrRejected counts one rejection, tagged with its cause (e.g.
	// "acquire_timeout", "adapter_error").
	IncrRejected(name string, typ string, reason string)

	// ObserveAcquireLatency records time from lockAsReader/Writer to
	// settlement (Acquired or Rejected).
	ObserveAcquireLatency(name string, typ string, latency time.Duration)

	// ObserveHoldDuration records how long an Acquired lock was held before
	// release.
	ObserveHoldDuration(name string, typ string, held time.Duration)

	// ObserveGCCycle records one completed GC pass.
	ObserveGCCycle(collected int, refreshed int, took time.Duration)

	// SetActiveLocks reports the current registry size.
	SetActiveLocks(count int)
}
