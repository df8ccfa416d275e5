package pgstore

import (
	"context"
	"fmt"

	"github.com/lockfleet/rwlock/adapter"
)

// Setup creates the queue-document table and its indexes, tolerating
// "already exists". PostgreSQL has no native per-row TTL and Setup installs
// none: GC's collect phase (see collectStaleSQL) removes stale entries from
// each row's queue, but no operation of this adapter deletes a row whose
// document-level at has gone stale. Setup still creates idx_at on that
// column, although neither GC query filters or orders by it.
func (a *Adapter) Setup(ctx context.Context, opts adapter.SetupOptions) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			name  text PRIMARY KEY,
			at    timestamptz NOT NULL,
			queue jsonb NOT NULL DEFAULT '[]'::jsonb
		);`, a.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_at ON %s (at);`, a.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_queue_id ON %s USING GIN (queue jsonb_path_ops);`, a.table),
	}

	return withSpan(ctx, "setup", "", func(ctx context.Context) error {
		for _, stmt := range stmts {
			if _, err := a.pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("pgstore: setup: %w", err)
			}
		}
		return nil
	})
}
