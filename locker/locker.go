// Package locker implements the public coordinator API: acquire/release
// orchestration per process, acquire-timeout, a tracked-lock registry, the
// periodic garbage-collection driver, and an event bus, driven through a
// pluggable adapter.Acquirer.
package locker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lockfleet/rwlock/adapter"
	"github.com/lockfleet/rwlock/lock"
)

// releaseManyConcurrency bounds releaseMany's fan-out.
const releaseManyConcurrency = 8

// Locker is the public entry point: build one per adapter, take/release
// locks through it, and optionally subscribe to its event stream.
type Locker struct {
	adapter  adapter.Acquirer
	cfg      lockerConfig
	registry *lock.Registry
	bus      eventBus
	setupSF  singleflight.Group
	setupOK  bool

	gc *gcDriver
}

// New builds a Locker bound to adapter, applying opts.
func New(ad adapter.Acquirer, opts ...LockerOption) *Locker {
	cfg := defaultLockerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Locker{
		adapter:  ad,
		cfg:      cfg,
		registry: lock.NewRegistry(),
	}
	l.gc = newGCDriver(l)
	return l
}

// Subscribe registers a Listener for every event this Locker emits.
func (l *Locker) Subscribe(listener Listener) {
	l.bus.subscribe(listener)
}

// LockAsReader requests a shared lock on name, blocking until it is
// Acquired, rejected by an acquire-timeout, or ctx is done.
func (l *Locker) LockAsReader(ctx context.Context, name string, opts lock.Options) (*lock.Lock, error) {
	return l.lockAsReader(ctx, name, opts)
}

// LockAsWriter requests an exclusive lock on name, blocking until it is
// Acquired, rejected by an acquire-timeout, or ctx is done.
func (l *Locker) LockAsWriter(ctx context.Context, name string, opts lock.Options) (*lock.Lock, error) {
	return l.lockAsWriter(ctx, name, opts)
}

// Release is idempotent: releasing an already-released or untracked lock
// is a no-op.
func (l *Locker) Release(ctx context.Context, lk *lock.Lock) error {
	return l.release(ctx, lk)
}

// ReleaseMany releases every lock in locks concurrently and returns the
// first error encountered, if any. Every lock is still attempted.
func (l *Locker) ReleaseMany(ctx context.Context, locks []*lock.Lock) error {
	return l.releaseMany(ctx, locks)
}

// ReleaseAll drops every lock this Locker's adapter owns.
func (l *Locker) ReleaseAll(ctx context.Context) error {
	return l.releaseAll(ctx)
}

// Close stops the GC driver, if running, and waits for its in-flight
// cycle to finish.
func (l *Locker) Close() {
	l.gc.stop()
}

// setup runs the adapter's Setup exactly once across however many
// concurrent first-callers there are, via singleflight.
func (l *Locker) setup(ctx context.Context) error {
	if l.setupOK {
		return nil
	}
	setupCapable, ok := l.adapter.(adapter.SetupCapable)
	if !ok {
		l.setupOK = true
		return nil
	}

	_, err, _ := l.setupSF.Do("setup", func() (any, error) {
		err := setupCapable.Setup(ctx, adapter.SetupOptions{GCIntervalMs: l.cfg.gcIntervalMs})
		if err == nil {
			l.setupOK = true
		}
		return nil, err
	})
	if err != nil {
		return lock.NewAdapterError("setup", err)
	}
	return nil
}

// lockAsReader requests a shared lock on name.
func (l *Locker) lockAsReader(ctx context.Context, name string, opts lock.Options) (*lock.Lock, error) {
	return l.acquire(ctx, lock.NewReader(name, opts, l.cfg.clock))
}

// lockAsWriter requests an exclusive lock on name.
func (l *Locker) lockAsWriter(ctx context.Context, name string, opts lock.Options) (*lock.Lock, error) {
	return l.acquire(ctx, lock.NewWriter(name, opts, l.cfg.clock))
}

func (l *Locker) acquire(ctx context.Context, lk *lock.Lock) (*lock.Lock, error) {
	ctx, span := l.cfg.tracer.Start(ctx, "locker.acquire")
	defer span.End()

	if err := lk.Options().Validate(); err != nil {
		return nil, lock.NewLockError(lk, "acquire", err)
	}

	if err := l.setup(ctx); err != nil {
		return nil, err
	}

	l.registry.Add(lk)
	l.gc.ensureStarted()

	ctx, cancelTimeout := l.armAcquireTimeout(ctx, lk)
	defer cancelTimeout()

	err := l.adapter.Acquire(ctx, lk)
	latency, _ := lk.SettledIn()

	switch {
	case lk.Status() == lock.Acquired:
		l.cfg.metrics.IncrAcquire(lk.Name(), string(lk.Type()), true)
		l.cfg.metrics.ObserveAcquireLatency(lk.Name(), string(lk.Type()), latency)
		l.cfg.logger.Infow("lock acquired", "name", lk.Name(), "type", lk.Type(), "id", lk.ID())
		l.bus.emit(Event{Kind: EventAcquiredLock, Lock: lk})
		return lk, nil

	case lk.Status() == lock.Rejected:
		// Already settled to Rejected, almost always by the acquire-timeout
		// goroutine racing the adapter call. Its recorded Reason is the
		// real cause; any error the adapter call itself returned (e.g. a
		// plain context.Canceled from the timeout's own cancel()) is a
		// side effect of that race, not the cause, so it is discarded here.
		return nil, l.rejectAndRemove(lk, lk.Reason())

	case err == nil:
		reason := fmt.Errorf("acquire abandoned: lock left Acquiring without being admitted")
		_ = lk.Reject(reason)
		return nil, l.rejectAndRemove(lk, lk.Reason())

	default:
		rejectErr := lock.NewLockError(lk, "acquire", err)
		_ = lk.Reject(rejectErr)
		return nil, l.rejectAndRemove(lk, rejectErr)
	}
}

func (l *Locker) rejectAndRemove(lk *lock.Lock, reason error) error {
	l.cfg.metrics.IncrAcquire(lk.Name(), string(lk.Type()), false)
	l.cfg.metrics.IncrRejected(lk.Name(), string(lk.Type()), reasonTag(reason))
	l.cfg.logger.Warnw("lock rejected", "name", lk.Name(), "type", lk.Type(), "id", lk.ID(), "reason", reason)
	l.bus.emit(Event{Kind: EventRejectedLock, Lock: lk})
	l.registry.Remove(lk)
	return reason
}

func reasonTag(err error) string {
	switch err.(type) {
	case *lock.AcquireTimeoutError:
		return "acquire_timeout"
	case *lock.LockError:
		return "adapter_error"
	default:
		return "unknown"
	}
}

func (l *Locker) armAcquireTimeout(ctx context.Context, lk *lock.Lock) (context.Context, context.CancelFunc) {
	timeout, ok := lk.AcquireTimeout()
	if !ok {
		return context.WithCancel(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	timer := l.cfg.clock.NewTimer(timeout)
	done := make(chan struct{})

	go func() {
		select {
		case <-timer.Chan():
			if lk.IsAcquiring() {
				_ = lk.Reject(&lock.AcquireTimeoutError{Lock: lk})
			}
			cancel()
		case <-done:
		}
	}()

	return ctx, func() {
		timer.Stop()
		close(done)
		cancel()
	}
}

// release is idempotent: a no-op if lk is Releasing, already Released, or
// not tracked. Otherwise it marks lk Releasing, calls the adapter, emits
// ReleasedLock on success, and unconditionally drops lk from the registry.
func (l *Locker) release(ctx context.Context, lk *lock.Lock) error {
	ctx, span := l.cfg.tracer.Start(ctx, "locker.release")
	defer span.End()

	if !l.registry.Contains(lk) {
		return nil
	}
	switch lk.Status() {
	case lock.Releasing:
		return nil
	case lock.Released:
		l.registry.Remove(lk)
		return nil
	}

	defer l.registry.Remove(lk)

	if err := lk.MarkReleasing(); err != nil {
		return err
	}
	err := l.adapter.Release(ctx, lk)
	if err != nil {
		l.cfg.metrics.IncrRelease(lk.Name(), string(lk.Type()), false)
		return lock.NewLockError(lk, "release", err)
	}

	held, _ := lk.AcquiredFor()
	l.cfg.metrics.IncrRelease(lk.Name(), string(lk.Type()), true)
	l.cfg.metrics.ObserveHoldDuration(lk.Name(), string(lk.Type()), held)
	l.cfg.logger.Infow("lock released", "name", lk.Name(), "type", lk.Type(), "id", lk.ID())
	l.bus.emit(Event{Kind: EventReleasedLock, Lock: lk})
	return nil
}

// releaseMany releases every lock in locks concurrently, bounded by
// releaseManyConcurrency. The first error is returned; all releases are
// still attempted.
func (l *Locker) releaseMany(ctx context.Context, locks []*lock.Lock) error {
	var g errgroup.Group
	g.SetLimit(releaseManyConcurrency)
	rctx := context.WithoutCancel(ctx)
	for _, lk := range locks {
		lk := lk
		g.Go(func() error { return l.release(rctx, lk) })
	}
	return g.Wait()
}

// releaseAll drops every entry the adapter owns and clears the registry.
func (l *Locker) releaseAll(ctx context.Context) error {
	if err := l.adapter.ReleaseAll(ctx); err != nil {
		return lock.NewAdapterError("releaseAll", err)
	}
	for _, lk := range l.registry.Snapshot() {
		l.registry.Remove(lk)
	}
	return nil
}

// Task is the work run while a lock from ensureReadingTaskConcurrency or
// ensureWritingTaskConcurrency is held.
type Task[T any] func(ctx context.Context) (T, error)

// EnsureReadingTaskConcurrency acquires a reader lock on name, runs task,
// and releases the lock afterwards regardless of task's outcome.
func EnsureReadingTaskConcurrency[T any](ctx context.Context, l *Locker, name string, opts lock.Options, task Task[T]) (T, error) {
	return ensureTaskConcurrency(ctx, l, name, opts, task, l.lockAsReader)
}

// EnsureWritingTaskConcurrency acquires a writer lock on name, runs task,
// and releases the lock afterwards regardless of task's outcome.
func EnsureWritingTaskConcurrency[T any](ctx context.Context, l *Locker, name string, opts lock.Options, task Task[T]) (T, error) {
	return ensureTaskConcurrency(ctx, l, name, opts, task, l.lockAsWriter)
}

func ensureTaskConcurrency[T any](
	ctx context.Context,
	l *Locker,
	name string,
	opts lock.Options,
	task Task[T],
	acquireFn func(context.Context, string, lock.Options) (*lock.Lock, error),
) (T, error) {
	var zero T
	lk, err := acquireFn(ctx, name, opts)
	if err != nil {
		return zero, err
	}
	defer func() { _ = l.release(ctx, lk) }()

	return task(ctx)
}
