package locker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lockfleet/rwlock/adapter"
)

// errGCCycleInProgress marks a dropped, overlapping GC cycle; it is never
// returned to a caller, only carried in an EventError.
var errGCCycleInProgress = errors.New("locker: GC cycle already in progress")

// gcDriver runs the adapter's GC pass on a ticker, started lazily on the
// first acquire and guarded so at most one cycle runs at a time: an
// overlap attempt is dropped and reported as an EventError rather than
// queued or blocked on. The ticker stops itself once the registry drains,
// and ensureStarted restarts it on the next acquire.
type gcDriver struct {
	owner *Locker

	mu      sync.Mutex
	started bool
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func newGCDriver(owner *Locker) *gcDriver {
	return &gcDriver{owner: owner}
}

// ensureStarted lazily starts the ticker loop if it isn't already running,
// provided the adapter supports GC and an interval was configured. Safe to
// call on every acquire.
func (d *gcDriver) ensureStarted() {
	if _, ok := d.owner.adapter.(adapter.GCCapable); !ok {
		return
	}
	if d.owner.cfg.gcIntervalMs <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.started = true
	d.cancel = cancel
	d.done = make(chan struct{})
	go d.run(ctx, d.done)
}

// stop ends the ticker loop and waits for the in-flight cycle, if any, to
// finish. A no-op if the driver never started.
func (d *gcDriver) stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (d *gcDriver) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	cfg := d.owner.cfg
	interval := time.Duration(cfg.gcIntervalMs) * time.Millisecond
	ticker := cfg.clock.NewTicker(interval)
	defer ticker.Stop()

	var cycles sync.WaitGroup
	defer cycles.Wait()

	for {
		select {
		case <-ticker.Chan():
			if d.owner.registry.Len() == 0 {
				cycles.Wait()
				d.markStopped()
				return
			}
			cycles.Add(1)
			go func() {
				defer cycles.Done()
				d.runCycle(ctx)
			}()
		case <-ctx.Done():
			return
		}
	}
}

func (d *gcDriver) markStopped() {
	d.mu.Lock()
	d.started = false
	d.cancel = nil
	d.mu.Unlock()
}

func (d *gcDriver) runCycle(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		d.owner.bus.emit(Event{Kind: EventError, Err: errGCCycleInProgress})
		return
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	gcCapable, ok := d.owner.adapter.(adapter.GCCapable)
	if !ok {
		return
	}

	cfg := d.owner.cfg
	now := cfg.clock.Now()
	in := adapter.GCInput{
		Registry:     d.owner.registry,
		GCIntervalMs: cfg.gcIntervalMs,
		At:           now,
		StaleAt:      adapter.StaleAt(now, cfg.gcIntervalMs),
	}

	cycle, err := gcCapable.GC(ctx, in)
	if err != nil {
		cfg.logger.Errorw("gc cycle failed", "error", err)
		d.owner.bus.emit(Event{Kind: EventError, Err: err})
		return
	}

	cfg.metrics.ObserveGCCycle(cycle.CollectedCount, cycle.RefreshedCount, cycle.Took)
	cfg.metrics.SetActiveLocks(d.owner.registry.Len())
	cfg.logger.Infow("gc cycle complete",
		"collected", cycle.CollectedCount,
		"refreshed", cycle.RefreshedCount,
		"took", cycle.Took)
	d.owner.bus.emit(Event{Kind: EventGarbageCycle, GarbageCycle: cycle})
}
