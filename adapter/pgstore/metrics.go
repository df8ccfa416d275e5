package pgstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rwlock",
			Subsystem: "pgstore",
			Name:      "queries_total",
			Help:      "Total number of queries issued by the pgstore adapter.",
		},
		[]string{"query", "success"},
	)
	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rwlock",
			Subsystem: "pgstore",
			Name:      "query_duration_seconds",
			Help:      "Duration of queries issued by the pgstore adapter.",
		},
		[]string{"query"},
	)
)

func observe(query string, seconds float64, err error) {
	queryDuration.WithLabelValues(query).Observe(seconds)
	success := "true"
	if err != nil {
		success = "false"
	}
	queryTotal.WithLabelValues(query, success).Inc()
}
