// Package adapter defines the pluggable backend contract that the Locker
// coordinator drives: enqueue-and-poll acquisition, release, release-all,
// and optional setup/GC. Two implementations ship in subpackages: memory
// (single-process reference/oracle) and pgstore (the reference distributed
// implementation on PostgreSQL).
package adapter

import (
	"context"
	"time"

	"github.com/lockfleet/rwlock/lock"
)

// Acquirer is the mandatory capability set every Adapter must implement.
type Acquirer interface {
	// Acquire blocks until lock reaches Acquired, or returns without
	// acquiring if lock leaves the Acquiring state (e.g. externally
	// rejected by an acquire-timeout). On success it transitions lock to
	// Acquired itself. On failure to enqueue, it returns an error and
	// leaves lock's state untouched (the caller rejects it).
	Acquire(ctx context.Context, l *lock.Lock) error

	// Release removes lock's store presence and transitions it to
	// Released. Fails if the entry is no longer present (double-release
	// or already collected by GC).
	Release(ctx context.Context, l *lock.Lock) error

	// ReleaseAll drops every entry this adapter owns.
	ReleaseAll(ctx context.Context) error
}

// SetupOptions configures optional first-time initialization.
type SetupOptions struct {
	// GCIntervalMs, when > 0, tells the adapter to configure any TTL
	// machinery its GC implementation depends on.
	GCIntervalMs int
}

// SetupCapable is implemented by adapters with idempotent setup/init work
// (e.g. creating collections and indexes).
type SetupCapable interface {
	Setup(ctx context.Context, opts SetupOptions) error
}

// GCInput carries everything an adapter's GC pass needs: which locks are
// locally live (to refresh their heartbeats), the configured GC interval,
// and the reference times to stamp / compare against.
type GCInput struct {
	Registry     *lock.Registry
	GCIntervalMs int
	At           time.Time
	StaleAt      time.Time
}

// GCCapable is implemented by adapters that support garbage collection of
// abandoned queue entries.
type GCCapable interface {
	GC(ctx context.Context, in GCInput) (lock.GarbageCycle, error)
}

// StaleAt computes the GC collection cutoff: at - 2*gcInterval, per
// spec.md's staleAt formula.
func StaleAt(at time.Time, gcIntervalMs int) time.Time {
	return at.Add(-2 * time.Duration(gcIntervalMs) * time.Millisecond)
}
