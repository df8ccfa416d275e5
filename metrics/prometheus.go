package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics is a Metrics implementation backed by
// github.com/prometheus/client_golang, registered against a supplied
// registerer so callers control exposition.
type PrometheusMetrics struct {
	acquireTotal   *prometheus.CounterVec
	releaseTotal   *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
	acquireLatency *prometheus.HistogramVec
	holdDuration   *prometheus.HistogramVec
	gcCollected    prometheus.Counter
	gcRefreshed    prometheus.Counter
	gcDuration     prometheus.Histogram
	activeLocks    prometheus.Gauge
}

// NewPrometheusMetrics registers and returns a PrometheusMetrics. reg
// defaults to prometheus.DefaultRegisterer if nil.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		acquireTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rwlock", Name: "acquire_total",
			Help: "Total lock acquisition attempts.",
		}, []string{"name", "type", "success"}),
		releaseTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rwlock", Name: "release_total",
			Help: "Total lock releases.",
		}, []string{"name", "type", "success"}),
		rejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rwlock", Name: "rejected_total",
			Help: "Total lock rejections, by reason.",
		}, []string{"name", "type", "reason"}),
		acquireLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rwlock", Name: "acquire_latency_seconds",
			Help: "Time from request to settlement (Acquired or Rejected).",
		}, []string{"name", "type"}),
		holdDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rwlock", Name: "hold_duration_seconds",
			Help: "Time a lock was held between Acquired and Released.",
		}, []string{"name", "type"}),
		gcCollected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rwlock", Name: "gc_collected_total",
			Help: "Total stale queue entries collected by GC.",
		}),
		gcRefreshed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rwlock", Name: "gc_refreshed_total",
			Help: "Total heartbeats refreshed by GC.",
		}),
		gcDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rwlock", Name: "gc_duration_seconds",
			Help: "Duration of each GC cycle.",
		}),
		activeLocks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "rwlock", Name: "active_locks",
			Help: "Current registry size.",
		}),
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (m *PrometheusMetrics) IncrAcquire(name, typ string, success bool) {
	m.acquireTotal.WithLabelValues(name, typ, boolLabel(success)).Inc()
}

func (m *PrometheusMetrics) IncrRelease(name, typ string, success bool) {
	m.releaseTotal.WithLabelValues(name, typ, boolLabel(success)).Inc()
}

func (m *PrometheusMetrics) IncrRejected(name, typ, reason string) {
	m.rejectedTotal.WithLabelValues(name, typ, reason).Inc()
}

func (m *PrometheusMetrics) ObserveAcquireLatency(name, typ string, latency time.Duration) {
	m.acquireLatency.WithLabelValues(name, typ).Observe(latency.Seconds())
}

func (m *PrometheusMetrics) ObserveHoldDuration(name, typ string, held time.Duration) {
	m.holdDuration.WithLabelValues(name, typ).Observe(held.Seconds())
}

func (m *PrometheusMetrics) ObserveGCCycle(collected, refreshed int, took time.Duration) {
	m.gcCollected.Add(float64(collected))
	m.gcRefreshed.Add(float64(refreshed))
	m.gcDuration.Observe(took.Seconds())
}

func (m *PrometheusMetrics) SetActiveLocks(count int) {
	m.activeLocks.Set(float64(count))
}

var _ Metrics = (*PrometheusMetrics)(nil)
