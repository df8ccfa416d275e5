// Package pgstore is the reference distributed Adapter: a per-name queue
// document, held as one JSONB-array row per name in PostgreSQL, driven
// through github.com/jackc/pgx/v5's pgxpool.
//
// The document shape mirrors the abstract queue record: one row keyed by
// name, a document-level heartbeat, and an ordered JSONB array of
// {id, type, at} entries. Enqueue upserts-and-appends atomically with
// ON CONFLICT DO UPDATE, release conditionally pulls an entry, and GC
// refreshes live entries monotonically (GREATEST) while sweeping stale
// ones — the same operations spec'd for a document store, expressed as SQL.
package pgstore

import (
	"encoding/json"
	"time"

	"github.com/lockfleet/rwlock/adapter"
	"github.com/lockfleet/rwlock/lock"
)

// queueEntry is the JSON shape of one element in a document's queue array.
type queueEntry struct {
	ID   string    `json:"id"`
	Type lock.Type `json:"type"`
	At   time.Time `json:"at"`
}

func decodeQueue(raw []byte) ([]queueEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var entries []queueEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func toAdapterEntries(entries []queueEntry) []adapter.Entry {
	out := make([]adapter.Entry, len(entries))
	for i, e := range entries {
		out[i] = adapter.Entry{ID: e.ID, Type: e.Type}
	}
	return out
}
