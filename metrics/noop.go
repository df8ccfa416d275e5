package metrics

import "time"

type noOpMetrics struct{}

// NewNoOpMetrics returns a Metrics implementation that discards everything.
func NewNoOpMetrics() Metrics {
	return &noOpMetrics{}
}

func (*noOpMetrics) IncrAcquire(name, typ string, success bool)                       {}
func (*noOpMetrics) IncrRelease(name, typ string, success bool)                       {}
func (*noOpMetrics) IncrRejected(name, typ, reason string)                            {}
func (*noOpMetrics) ObserveAcquireLatency(name, typ string, latency time.Duration)    {}
func (*noOpMetrics) ObserveHoldDuration(name, typ string, held time.Duration)         {}
func (*noOpMetrics) ObserveGCCycle(collected, refreshed int, took time.Duration)      {}
func (*noOpMetrics) SetActiveLocks(count int)                                         {}
