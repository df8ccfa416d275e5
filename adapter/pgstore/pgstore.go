package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lockfleet/rwlock/adapter"
	"github.com/lockfleet/rwlock/clock"
	"github.com/lockfleet/rwlock/lock"
)

// maxEnqueueRetries bounds the number of extra attempts made when enqueue
// races another upsert of a brand-new document for the same name.
const maxEnqueueRetries = 2

// Adapter is the PostgreSQL-backed distributed Adapter. It implements
// adapter.Acquirer, adapter.SetupCapable, and adapter.GCCapable.
type Adapter struct {
	pool  *pgxpool.Pool
	cfg   Config
	clock clock.Clock
	table string
}

// New returns a pgstore Adapter over an already-configured pool. The caller
// owns the pool's lifecycle (pgstore never closes it).
func New(pool *pgxpool.Pool, cfg Config, clk clock.Clock) *Adapter {
	if clk == nil {
		clk = clock.New()
	}
	return &Adapter{pool: pool, cfg: cfg, clock: clk, table: cfg.tableName()}
}

var (
	_ adapter.Acquirer     = (*Adapter)(nil)
	_ adapter.SetupCapable = (*Adapter)(nil)
	_ adapter.GCCapable    = (*Adapter)(nil)
)

// Acquire enqueues l into its name's document, then polls the admission
// rule at l's configured interval until l is admitted or stops Acquiring.
func (a *Adapter) Acquire(ctx context.Context, l *lock.Lock) error {
	entries, err := a.enqueue(ctx, l)
	if err != nil {
		return lock.NewLockError(l, "enqueue", err)
	}

	for {
		if adapter.Admitted(toAdapterEntries(entries), l.ID(), l.Type()) {
			return l.MarkAcquired()
		}
		if !l.IsAcquiring() {
			a.pullBestEffort(l)
			return nil
		}
		select {
		case <-ctx.Done():
			a.pullBestEffort(l)
			return ctx.Err()
		case <-a.clock.After(l.PullInterval()):
		}

		entries, err = a.readQueue(ctx, l.Name())
		if err != nil {
			return lock.NewLockError(l, "poll", err)
		}
	}
}

func (a *Adapter) pullBestEffort(l *lock.Lock) {
	ctx := context.Background()
	_ = withSpan(ctx, "pull_best_effort", l.Name(), func(ctx context.Context) error {
		_, err := a.pool.Exec(ctx, pullEntrySQL(a.table), l.Name(), l.ID())
		return err
	})
}

func (a *Adapter) enqueue(ctx context.Context, l *lock.Lock) ([]queueEntry, error) {
	var raw []byte
	at := a.clock.Now()

	var err error
	for attempt := 0; attempt <= maxEnqueueRetries; attempt++ {
		err = withSpan(ctx, "enqueue", l.Name(), func(ctx context.Context) error {
			return a.pool.QueryRow(ctx, enqueueSQL(a.table), l.Name(), at, l.ID(), string(l.Type())).Scan(&raw)
		})
		if err == nil || !isRetryableConflict(err) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("pgstore: enqueue: %w", err)
	}
	return decodeQueue(raw)
}

func (a *Adapter) readQueue(ctx context.Context, name string) ([]queueEntry, error) {
	var raw []byte
	err := withSpan(ctx, "read_queue", name, func(ctx context.Context) error {
		return a.pool.QueryRow(ctx, readQueueSQL(a.table), name).Scan(&raw)
	})
	if err != nil {
		return nil, fmt.Errorf("pgstore: read queue: %w", err)
	}
	return decodeQueue(raw)
}

// Release conditionally removes l's entry and marks l Released. Fails
// loudly if the entry is no longer present (double-release or GC-collected).
func (a *Adapter) Release(ctx context.Context, l *lock.Lock) error {
	var tag int64
	err := withSpan(ctx, "release", l.Name(), func(ctx context.Context) error {
		ct, err := a.pool.Exec(ctx, pullEntrySQL(a.table), l.Name(), l.ID())
		if err != nil {
			return err
		}
		tag = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return lock.NewLockError(l, "release", err)
	}
	if tag == 0 {
		return lock.NewLockError(l, "release", fmt.Errorf("not in the queue anymore"))
	}
	return l.MarkReleased()
}

// ReleaseAll drops every document this adapter's table holds.
func (a *Adapter) ReleaseAll(ctx context.Context) error {
	return withSpan(ctx, "release_all", "", func(ctx context.Context) error {
		_, err := a.pool.Exec(ctx, truncateSQL(a.table))
		return err
	})
}
