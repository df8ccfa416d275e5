package pgstore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/lockfleet/rwlock/adapter/pgstore")

// withSpan wraps one store round trip: it starts a span named query,
// records elapsed time and errors to both the span and to Prometheus, and
// returns fn's error unchanged.
func withSpan(ctx context.Context, query, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, query,
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("rwlock.lock_name", name),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	observe(query, time.Since(start).Seconds(), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
