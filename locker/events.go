package locker

import (
	"sync"

	"github.com/lockfleet/rwlock/lock"
)

// EventKind distinguishes the events a Locker emits.
type EventKind string

const (
	EventAcquiredLock EventKind = "acquired_lock"
	EventRejectedLock EventKind = "rejected_lock"
	EventReleasedLock EventKind = "released_lock"
	EventGarbageCycle EventKind = "garbage_cycle"
	EventError        EventKind = "error"
)

// Event is one item delivered to Locker listeners. Exactly one of Lock,
// GarbageCycle, or Err is meaningful, matching Kind.
type Event struct {
	Kind         EventKind
	Lock         *lock.Lock
	GarbageCycle lock.GarbageCycle
	Err          error
}

// Listener receives Locker events. Panics and errors from a Listener are
// recovered and never propagate to the call that triggered the event.
type Listener func(Event)

// eventBus is a small multi-listener emitter. Listener failures (panics)
// are isolated so one bad listener cannot break lock operations.
type eventBus struct {
	mu        sync.RWMutex
	listeners []Listener
}

func (b *eventBus) subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *eventBus) emit(ev Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		b.safeInvoke(l, ev)
	}
}

func (b *eventBus) safeInvoke(l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			// A listener panicking must never break the emitting call; there
			// is nowhere safe left to report this but the listener's own
			// owner, so it is dropped.
			_ = r
		}
	}()
	l(ev)
}
