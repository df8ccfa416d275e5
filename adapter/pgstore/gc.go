package pgstore

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lockfleet/rwlock/adapter"
	"github.com/lockfleet/rwlock/lock"
)

// refreshConcurrency bounds how many refresh UPDATEs run in flight during
// one GC cycle, mirroring locker.releaseMany's fan-out shape.
const refreshConcurrency = 8

// GC sweeps entries older than in.StaleAt across every document, then
// refreshes the heartbeat of every lock currently in in.Registry.
func (a *Adapter) GC(ctx context.Context, in adapter.GCInput) (lock.GarbageCycle, error) {
	started := a.clock.Now()

	var collected int64
	err := withSpan(ctx, "gc_collect", "", func(ctx context.Context) error {
		ct, err := a.pool.Exec(ctx, collectStaleSQL(a.table), in.StaleAt)
		if err != nil {
			return err
		}
		collected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return lock.GarbageCycle{}, err
	}

	locks := in.Registry.Snapshot()
	refreshed := make([]int64, len(locks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for i, l := range locks {
		i, l := i, l
		g.Go(func() error {
			return withSpan(gctx, "gc_refresh", l.Name(), func(ctx context.Context) error {
				ct, err := a.pool.Exec(ctx, refreshEntrySQL(a.table), l.Name(), in.At, l.ID())
				if err != nil {
					return err
				}
				refreshed[i] = ct.RowsAffected()
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return lock.GarbageCycle{}, err
	}

	var refreshedTotal int64
	for _, n := range refreshed {
		refreshedTotal += n
	}

	return lock.GarbageCycle{
		CollectedCount: int(collected),
		RefreshedCount: int(refreshedTotal),
		Took:           a.clock.Since(started),
	}, nil
}
