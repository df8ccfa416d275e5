package pgstore

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lockfleet/rwlock/adapter"
	"github.com/lockfleet/rwlock/clock"
	"github.com/lockfleet/rwlock/lock"
)

func TestDecodeQueueEmptyIsNil(t *testing.T) {
	entries, err := decodeQueue(nil)
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Fatalf("expected nil, got %v", entries)
	}
}

func TestDecodeQueueRoundTrip(t *testing.T) {
	raw := []byte(`[{"id":"a","type":"writer","at":"2024-01-01T00:00:00Z"},{"id":"b","type":"reader","at":"2024-01-01T00:00:01Z"}]`)
	entries, err := decodeQueue(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "a" || entries[0].Type != lock.Writer {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	converted := toAdapterEntries(entries)
	if !adapter.Admitted(converted, "a", lock.Writer) {
		t.Fatal("expected writer head admitted")
	}
}

func TestConfigTableNameDefaults(t *testing.T) {
	c := Config{}
	if got, want := c.tableName(), `"lock_queue"`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestConfigTableNameWithSchema(t *testing.T) {
	c := Config{TableName: "queue", SchemaName: "locking"}
	if got, want := c.tableName(), `"locking"."queue"`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestIsRetryableConflictClassifiesSQLState(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{sqlStateUniqueViolation, true},
		{sqlStateSerializationFailed, true},
		{sqlStateDeadlockDetected, true},
		{"42P01", false}, // undefined_table
	}
	for _, tc := range cases {
		err := &pgconn.PgError{Code: tc.code}
		if got := isRetryableConflict(err); got != tc.want {
			t.Errorf("code %s: got %v, want %v", tc.code, got, tc.want)
		}
	}
	if isRetryableConflict(errors.New("not a pg error")) {
		t.Fatal("expected non-pgconn error to be non-retryable")
	}
}

func TestQueriesReferenceConfiguredTable(t *testing.T) {
	table := `"custom"."lock_queue"`
	for name, sql := range map[string]string{
		"enqueue":      enqueueSQL(table),
		"readQueue":    readQueueSQL(table),
		"pullEntry":    pullEntrySQL(table),
		"truncate":     truncateSQL(table),
		"collectStale": collectStaleSQL(table),
		"refreshEntry": refreshEntrySQL(table),
	} {
		if !strings.Contains(sql, table) {
			t.Errorf("%s query does not reference configured table:\n%s", name, sql)
		}
	}
}

// requireDatabase returns a live pool, or skips the test if
// LOCKFLEET_TEST_DATABASE_URL is unset — the same opt-in-live-database
// convention the pack's Postgres-backed suites use, without needing a
// build tag.
func requireDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("LOCKFLEET_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping: LOCKFLEET_TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestAcquireReleaseAgainstLiveDatabase(t *testing.T) {
	pool := requireDatabase(t)
	ctx := context.Background()
	fake := clock.NewFake(time.Unix(0, 0))
	a := New(pool, Config{TableName: "lockfleet_test_queue"}, fake)

	if err := a.Setup(ctx, adapter.SetupOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := a.ReleaseAll(ctx); err != nil {
		t.Fatal(err)
	}

	l := lock.NewReader("acquire-release", lock.Options{PullIntervalMs: 1}, fake)
	if err := a.Acquire(ctx, l); err != nil {
		t.Fatal(err)
	}
	if l.Status() != lock.Acquired {
		t.Fatalf("expected Acquired, got %s", l.Status())
	}
	if err := a.Release(ctx, l); err != nil {
		t.Fatal(err)
	}
	if err := a.Release(ctx, l); err == nil {
		t.Fatal("expected second release to fail")
	}
}

func TestGCAgainstLiveDatabase(t *testing.T) {
	pool := requireDatabase(t)
	ctx := context.Background()
	fake := clock.NewFake(time.Unix(0, 0))
	a := New(pool, Config{TableName: "lockfleet_test_gc"}, fake)

	if err := a.Setup(ctx, adapter.SetupOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := a.ReleaseAll(ctx); err != nil {
		t.Fatal(err)
	}

	live := lock.NewReader("gc", lock.Options{}, fake)
	if err := a.Acquire(ctx, live); err != nil {
		t.Fatal(err)
	}

	registry := lock.NewRegistry()
	registry.Add(live)

	fake.Advance(10 * time.Second)
	cycle, err := a.GC(ctx, adapter.GCInput{
		Registry:     registry,
		GCIntervalMs: 1000,
		At:           fake.Now(),
		StaleAt:      adapter.StaleAt(fake.Now(), 1000),
	})
	if err != nil {
		t.Fatal(err)
	}
	if cycle.RefreshedCount != 1 {
		t.Fatalf("expected live lock refreshed, got %+v", cycle)
	}
	if err := a.Release(ctx, live); err != nil {
		t.Fatalf("expected refreshed lock to still release: %v", err)
	}
}
