// Package memory provides a single-process InMemory Adapter: the semantic
// oracle for the FIFO admission rule and the reference implementation used
// by Locker's own tests and by callers that don't need cross-process
// coordination.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lockfleet/rwlock/adapter"
	"github.com/lockfleet/rwlock/clock"
	"github.com/lockfleet/rwlock/lock"
)

type queueItem struct {
	lock      *lock.Lock
	heartbeat time.Time
}

// Adapter is a single-process, in-memory Adapter implementation.
type Adapter struct {
	mu     sync.Mutex
	clock  clock.Clock
	queues map[string][]*queueItem
}

// New returns an InMemory adapter. clk defaults to the standard wall clock.
func New(clk clock.Clock) *Adapter {
	if clk == nil {
		clk = clock.New()
	}
	return &Adapter{clock: clk, queues: make(map[string][]*queueItem)}
}

func toEntries(items []*queueItem) []adapter.Entry {
	entries := make([]adapter.Entry, len(items))
	for i, it := range items {
		entries[i] = adapter.Entry{ID: it.lock.ID(), Type: it.lock.Type()}
	}
	return entries
}

// Acquire appends l to its name's queue, then polls the admission rule at
// l's configured interval until l is admitted or stops Acquiring.
func (a *Adapter) Acquire(ctx context.Context, l *lock.Lock) error {
	a.mu.Lock()
	a.queues[l.Name()] = append(a.queues[l.Name()], &queueItem{lock: l, heartbeat: a.clock.Now()})
	a.mu.Unlock()

	for {
		if a.admitted(l) {
			return l.MarkAcquired()
		}
		if !l.IsAcquiring() {
			a.removeByID(l.Name(), l.ID())
			return nil
		}
		select {
		case <-ctx.Done():
			a.removeByID(l.Name(), l.ID())
			return ctx.Err()
		case <-a.clock.After(l.PullInterval()):
		}
	}
}

func (a *Adapter) admitted(l *lock.Lock) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return adapter.Admitted(toEntries(a.queues[l.Name()]), l.ID(), l.Type())
}

// Release removes l's entry from its name's queue and marks it Released.
// Fails if the entry is no longer present.
func (a *Adapter) Release(ctx context.Context, l *lock.Lock) error {
	a.mu.Lock()
	removed := a.removeByIDLocked(l.Name(), l.ID())
	a.mu.Unlock()

	if !removed {
		return lock.NewLockError(l, "release", fmt.Errorf("not in the queue anymore"))
	}
	return l.MarkReleased()
}

// ReleaseAll drops every entry this adapter is tracking, across all names.
func (a *Adapter) ReleaseAll(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queues = make(map[string][]*queueItem)
	return nil
}

func (a *Adapter) removeByID(name, id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.removeByIDLocked(name, id)
}

func (a *Adapter) removeByIDLocked(name, id string) bool {
	q := a.queues[name]
	for i, it := range q {
		if it.lock.ID() == id {
			a.queues[name] = append(q[:i], q[i+1:]...)
			return true
		}
	}
	return false
}

// GC refreshes heartbeats for every lock in in.Registry that this adapter
// still holds an entry for, and removes entries whose heartbeat predates
// in.StaleAt.
func (a *Adapter) GC(ctx context.Context, in adapter.GCInput) (lock.GarbageCycle, error) {
	started := a.clock.Now()

	a.mu.Lock()
	collected := 0
	for name, q := range a.queues {
		kept := q[:0]
		for _, it := range q {
			if it.heartbeat.Before(in.StaleAt) {
				collected++
				continue
			}
			kept = append(kept, it)
		}
		if len(kept) == 0 {
			delete(a.queues, name)
		} else {
			a.queues[name] = kept
		}
	}
	a.mu.Unlock()

	refreshed := 0
	for _, l := range in.Registry.Snapshot() {
		a.mu.Lock()
		for _, it := range a.queues[l.Name()] {
			if it.lock.ID() == l.ID() {
				it.heartbeat = in.At
				refreshed++
				break
			}
		}
		a.mu.Unlock()
	}

	return lock.GarbageCycle{
		CollectedCount: collected,
		RefreshedCount: refreshed,
		Took:           a.clock.Since(started),
	}, nil
}
