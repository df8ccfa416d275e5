package pgstore

import "fmt"

// enqueueSQL upserts the per-name document, atomically appending the new
// entry and raising the document-level heartbeat, returning the resulting
// queue for the caller's first admission check.
func enqueueSQL(table string) string {
	return fmt.Sprintf(`
INSERT INTO %[1]s (name, at, queue)
VALUES ($1, $2, jsonb_build_array(jsonb_build_object('id', $3, 'type', $4, 'at', $2)))
ON CONFLICT (name) DO UPDATE
SET at = GREATEST(%[1]s.at, EXCLUDED.at),
    queue = %[1]s.queue || jsonb_build_object('id', $3, 'type', $4, 'at', $2)
RETURNING queue;`, table)
}

// readQueueSQL re-reads a document's queue for a subsequent admission poll.
func readQueueSQL(table string) string {
	return fmt.Sprintf(`SELECT queue FROM %s WHERE name = $1;`, table)
}

// pullEntrySQL removes one entry matching id from name's queue, if present.
// RowsAffected reports whether an entry was actually pulled.
func pullEntrySQL(table string) string {
	return fmt.Sprintf(`
UPDATE %[1]s
SET queue = COALESCE(
    (SELECT jsonb_agg(elem) FROM jsonb_array_elements(queue) elem WHERE elem->>'id' <> $2),
    '[]'::jsonb)
WHERE name = $1
  AND queue @> jsonb_build_array(jsonb_build_object('id', $2));`, table)
}

// truncateSQL drops every document this adapter's table holds.
func truncateSQL(table string) string {
	return fmt.Sprintf(`TRUNCATE %s;`, table)
}

// collectStaleSQL removes queue entries older than staleAt from every
// document that has at least one. RowsAffected is the "documents modified"
// count spec'd for the distributed adapter's collect phase.
func collectStaleSQL(table string) string {
	return fmt.Sprintf(`
UPDATE %[1]s
SET queue = COALESCE(
    (SELECT jsonb_agg(elem) FROM jsonb_array_elements(queue) elem
     WHERE (elem->>'at')::timestamptz >= $1),
    '[]'::jsonb)
WHERE EXISTS (
    SELECT 1 FROM jsonb_array_elements(queue) elem
    WHERE (elem->>'at')::timestamptz < $1
);`, table)
}

// refreshEntrySQL monotonically raises the heartbeat of one locally-owned
// queue entry (and its document), using GREATEST so a refresh can never
// regress an entry that was already advanced by a later tick.
func refreshEntrySQL(table string) string {
	return fmt.Sprintf(`
UPDATE %[1]s
SET at = GREATEST(at, $2),
    queue = (
        SELECT jsonb_agg(
            CASE WHEN elem->>'id' = $3
                 THEN jsonb_set(elem, '{at}', to_jsonb(GREATEST((elem->>'at')::timestamptz, $2::timestamptz)))
                 ELSE elem
            END)
        FROM jsonb_array_elements(queue) elem
    )
WHERE name = $1
  AND queue @> jsonb_build_array(jsonb_build_object('id', $3));`, table)
}
