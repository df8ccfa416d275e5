package locker

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/lockfleet/rwlock/clock"
	"github.com/lockfleet/rwlock/lock"
	"github.com/lockfleet/rwlock/logger"
	"github.com/lockfleet/rwlock/metrics"
)

// LockerOption applies a configuration setting to a Locker during
// construction.
type LockerOption func(*lockerConfig)

type lockerConfig struct {
	gcIntervalMs int
	clock        clock.Clock
	logger       logger.Logger
	metrics      metrics.Metrics
	tracer       trace.Tracer
}

func defaultLockerConfig() lockerConfig {
	return lockerConfig{
		clock:   clock.New(),
		logger:  logger.NewNoOpLogger(),
		metrics: metrics.NewNoOpMetrics(),
		tracer:  trace.NewNoopTracerProvider().Tracer("noop"),
	}
}

// WithGCInterval enables the periodic GC driver at intervalMs, provided the
// adapter supports GC. intervalMs <= 0 leaves GC disabled.
func WithGCInterval(intervalMs int) LockerOption {
	return func(cfg *lockerConfig) {
		if intervalMs > 0 {
			cfg.gcIntervalMs = intervalMs
		}
	}
}

// WithGC enables the periodic GC driver at lock.DefaultGCIntervalMs,
// for callers that want GC on without picking their own interval.
func WithGC() LockerOption {
	return WithGCInterval(lock.DefaultGCIntervalMs)
}

// WithClock overrides the clock used for timeouts, polling, and the GC
// ticker. Primarily useful for deterministic tests.
func WithClock(clk clock.Clock) LockerOption {
	return func(cfg *lockerConfig) {
		if clk != nil {
			cfg.clock = clk
		}
	}
}

// WithLogger sets the logger used for lock lifecycle and GC events.
func WithLogger(l logger.Logger) LockerOption {
	return func(cfg *lockerConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder used for lock lifecycle and GC
// events.
func WithMetrics(m metrics.Metrics) LockerOption {
	return func(cfg *lockerConfig) {
		if m != nil {
			cfg.metrics = m
		}
	}
}

// WithTracer sets the OpenTelemetry tracer used to span acquire/release
// calls through the adapter.
func WithTracer(t trace.Tracer) LockerOption {
	return func(cfg *lockerConfig) {
		if t != nil {
			cfg.tracer = t
		}
	}
}
