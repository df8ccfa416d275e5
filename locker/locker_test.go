package locker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lockfleet/rwlock/adapter/memory"
	"github.com/lockfleet/rwlock/clock"
	"github.com/lockfleet/rwlock/lock"
	"github.com/lockfleet/rwlock/testutil"
)

func newTestLocker(t *testing.T, opts ...LockerOption) *Locker {
	t.Helper()
	l := New(memory.New(clock.New()), opts...)
	t.Cleanup(l.Close)
	return l
}

// S1: two readers acquire concurrently, a writer with a short
// acquire-timeout cannot be served while they hold the lock and times out,
// and once both readers release, a new writer acquires immediately.
func TestScenario_TwoReadersThenWriterTimeout(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(t)

	r1, err := l.LockAsReader(ctx, "doc-1", lock.Options{})
	testutil.RequireNoError(t, err, "r1 acquire")
	r2, err := l.LockAsReader(ctx, "doc-1", lock.Options{})
	testutil.RequireNoError(t, err, "r2 acquire")
	testutil.AssertEqual(t, 2, l.registry.Len(), "registry size after both readers acquire")

	_, err = l.LockAsWriter(ctx, "doc-1", lock.Options{AcquireTimeoutMs: 50, PullIntervalMs: 5})
	var timeoutErr *lock.AcquireTimeoutError
	testutil.AssertTrue(t, errors.As(err, &timeoutErr), "expected AcquireTimeoutError, got %v", err)

	testutil.RequireNoError(t, l.ReleaseMany(ctx, []*lock.Lock{r1, r2}), "release readers")

	w, err := l.LockAsWriter(ctx, "doc-1", lock.Options{AcquireTimeoutMs: 100, PullIntervalMs: 5})
	testutil.RequireNoError(t, err, "writer acquire after readers released")
	_ = l.Release(ctx, w)
}

// S2: two readers on the same name acquire concurrently, neither blocking
// the other.
func TestScenario_ReaderConcurrency(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(t)

	r1, err := l.LockAsReader(ctx, "doc-2", lock.Options{})
	testutil.RequireNoError(t, err, "r1 acquire")
	r2, err := l.LockAsReader(ctx, "doc-2", lock.Options{})
	testutil.RequireNoError(t, err, "r2 acquire")

	testutil.AssertNoError(t, l.ReleaseMany(ctx, []*lock.Lock{r1, r2}), "release")
}

// S3: writers serialize; the second writer only acquires after the first
// releases.
func TestScenario_WriterSerialization(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(t)

	w1, err := l.LockAsWriter(ctx, "doc-3", lock.Options{})
	testutil.RequireNoError(t, err, "w1 acquire")

	acquired := make(chan *lock.Lock, 1)
	go func() {
		w2, err := l.LockAsWriter(ctx, "doc-3", lock.Options{PullIntervalMs: 5})
		if err != nil {
			t.Errorf("w2 acquire: %v", err)
			return
		}
		acquired <- w2
	}()

	select {
	case <-acquired:
		t.Fatal("w2 acquired while w1 still held the lock")
	case <-time.After(30 * time.Millisecond):
	}

	testutil.RequireNoError(t, l.Release(ctx, w1), "release w1")

	select {
	case w2 := <-acquired:
		_ = l.Release(ctx, w2)
	case <-time.After(2 * time.Second):
		t.Fatal("w2 never acquired after w1 released")
	}
}

// S4: a GC cycle refreshes heartbeats for locally-held locks and does not
// collect them even past a naive staleness window.
func TestScenario_GCSparesActive(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(t, WithGCInterval(20))

	held, err := l.LockAsWriter(ctx, "doc-4", lock.Options{})
	testutil.RequireNoError(t, err, "acquire")
	defer func() { _ = l.Release(ctx, held) }()

	cycles := make(chan lock.GarbageCycle, 4)
	l.Subscribe(func(ev Event) {
		if ev.Kind == EventGarbageCycle {
			cycles <- ev.GarbageCycle
		}
	})

	// By the third cycle the stale cutoff lies after the lock's enqueue
	// time, so only the earlier refreshes keep its entry in the queue.
	for i := 0; i < 3; i++ {
		select {
		case <-cycles:
		case <-time.After(2 * time.Second):
			t.Fatal("no GC cycle observed")
		}
	}

	testutil.AssertEqual(t, lock.Acquired, held.Status(), "expected held lock to remain Acquired")
	testutil.RequireNoError(t, l.Release(ctx, held), "release after GC cycles")
}

// S5: an orphaned queue entry (never tracked in this process's registry)
// is eventually collected by GC.
func TestScenario_GCCollectsOrphans(t *testing.T) {
	ctx := context.Background()
	fake := clock.NewFake(time.Now())
	ad := memory.New(fake)
	l := New(ad, WithGCInterval(10), WithClock(fake))
	defer l.Close()

	orphan := lock.NewWriter("doc-5", lock.Options{}, fake)
	testutil.RequireNoError(t, ad.Acquire(ctx, orphan), "seed orphan")

	collected := make(chan int, 1)
	l.Subscribe(func(ev Event) {
		if ev.Kind == EventGarbageCycle && ev.GarbageCycle.CollectedCount > 0 {
			collected <- ev.GarbageCycle.CollectedCount
		}
	})

	// Starting the ticker requires at least one tracked acquire.
	marker, err := l.LockAsWriter(ctx, "doc-6", lock.Options{})
	testutil.RequireNoError(t, err, "marker acquire")
	defer func() { _ = l.Release(ctx, marker) }()

	for i := 0; i < 5; i++ {
		fake.Advance(10 * time.Millisecond)
		select {
		case n := <-collected:
			testutil.AssertTrue(t, n >= 1, "expected at least one collected entry, got %d", n)
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
	t.Fatal("orphan was never collected")
}

// S6: high concurrency across many readers and writers on the same name
// never allows a reader and a writer, or two writers, to hold
// simultaneously.
func TestScenario_HighConcurrencyStability(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(t)

	var active int32
	var violated atomic.Bool
	checkExclusive := func(isWriter bool) func() {
		n := atomic.AddInt32(&active, 1)
		if isWriter && n != 1 {
			violated.Store(true)
		}
		return func() { atomic.AddInt32(&active, -1) }
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := l.LockAsWriter(ctx, "hot", lock.Options{PullIntervalMs: 2})
			if err != nil {
				t.Errorf("writer acquire: %v", err)
				return
			}
			done := checkExclusive(true)
			time.Sleep(time.Millisecond)
			done()
			_ = l.Release(ctx, w)
		}()
	}
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := l.LockAsReader(ctx, "hot", lock.Options{PullIntervalMs: 2})
			if err != nil {
				t.Errorf("reader acquire: %v", err)
				return
			}
			done := checkExclusive(false)
			time.Sleep(time.Millisecond)
			done()
			_ = l.Release(ctx, r)
		}()
	}
	wg.Wait()

	if violated.Load() {
		t.Fatal("observed a writer holding the lock alongside another holder")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(t)

	lk, err := l.LockAsWriter(ctx, "idem", lock.Options{})
	testutil.RequireNoError(t, err, "acquire")
	testutil.AssertNoError(t, l.Release(ctx, lk), "first release")
	testutil.AssertNoError(t, l.Release(ctx, lk), "second release should be a no-op")
}

func TestReleaseOfUntrackedLockIsNoOp(t *testing.T) {
	l := newTestLocker(t)
	stray := lock.NewReader("never-acquired", lock.Options{}, clock.New())
	testutil.AssertNoError(t, l.Release(context.Background(), stray), "expected no-op")
}

func TestEnsureWritingTaskConcurrencyReleasesOnTaskError(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(t)

	_, err := EnsureWritingTaskConcurrency(ctx, l, "task-lock", lock.Options{}, func(ctx context.Context) (int, error) {
		return 0, errors.New("task failed")
	})
	testutil.AssertError(t, err, "expected task error to propagate")

	// The lock must have been released despite the task's error: a fresh
	// writer on the same name should acquire immediately.
	w, err := l.LockAsWriter(ctx, "task-lock", lock.Options{AcquireTimeoutMs: 100, PullIntervalMs: 5})
	testutil.RequireNoError(t, err, "expected lock to be free after task failure")
	_ = l.Release(ctx, w)
}

func TestSubscribeReceivesAcquiredAndReleasedEvents(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(t)

	var kinds []EventKind
	var mu sync.Mutex
	l.Subscribe(func(ev Event) {
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	})

	lk, err := l.LockAsReader(ctx, "events", lock.Options{})
	testutil.RequireNoError(t, err, "acquire")
	testutil.RequireNoError(t, l.Release(ctx, lk), "release")

	mu.Lock()
	defer mu.Unlock()
	if len(kinds) != 2 {
		t.Fatalf("expected [acquired, released], got %v", kinds)
	}
	testutil.AssertEqual(t, EventAcquiredLock, kinds[0], "first event")
	testutil.AssertEqual(t, EventReleasedLock, kinds[1], "second event")
}

func TestSubscribeListenerPanicDoesNotBreakAcquire(t *testing.T) {
	ctx := context.Background()
	l := newTestLocker(t)
	l.Subscribe(func(ev Event) { panic("listener exploded") })

	lk, err := l.LockAsReader(ctx, "panic-safe", lock.Options{})
	testutil.RequireNoError(t, err, "acquire should succeed despite panicking listener")
	_ = l.Release(ctx, lk)
}
