package lock

import "sync"

// Registry is a process-local collection of Locks currently tracked, from
// enqueue until terminal removal. Membership is by pointer identity: the
// same *Lock added twice is still one member, and a structurally identical
// but distinct *Lock is a different member.
type Registry struct {
	mu    sync.RWMutex
	locks map[*Lock]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[*Lock]struct{})}
}

// Add inserts l into the registry. A no-op if l is already present.
func (r *Registry) Add(l *Lock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks[l] = struct{}{}
}

// Remove deletes l from the registry. A no-op if l is not present.
func (r *Registry) Remove(l *Lock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, l)
}

// Contains reports whether l is currently tracked.
func (r *Registry) Contains(l *Lock) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.locks[l]
	return ok
}

// Len returns the number of tracked locks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.locks)
}

// Snapshot returns a defensive copy of every tracked lock, safe to iterate
// without holding the registry's internal lock (used by GC so a refresh
// pass doesn't serialize against concurrent Add/Remove).
func (r *Registry) Snapshot() []*Lock {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Lock, 0, len(r.locks))
	for l := range r.locks {
		out = append(out, l)
	}
	return out
}

// Filter is a predicate over a Lock, used to query the registry.
type Filter func(*Lock) bool

// And composes filters with a logical AND.
func (f Filter) And(other Filter) Filter {
	return func(l *Lock) bool { return f(l) && other(l) }
}

// Or composes filters with a logical OR.
func (f Filter) Or(other Filter) Filter {
	return func(l *Lock) bool { return f(l) || other(l) }
}

// ByName returns a Filter matching locks on the given name.
func ByName(name string) Filter {
	return func(l *Lock) bool { return l.Name() == name }
}

// ByType returns a Filter matching locks of the given type.
func ByType(typ Type) Filter {
	return func(l *Lock) bool { return l.Type() == typ }
}

// ByStatus returns a Filter matching locks with the given status.
func ByStatus(status Status) Filter {
	return func(l *Lock) bool { return l.Status() == status }
}

// Find returns every tracked lock matching filter, in no particular order.
func (r *Registry) Find(filter Filter) []*Lock {
	var out []*Lock
	for _, l := range r.Snapshot() {
		if filter(l) {
			out = append(out, l)
		}
	}
	return out
}

// IDs returns the IDs of every tracked lock.
func (r *Registry) IDs() []string {
	snap := r.Snapshot()
	ids := make([]string, len(snap))
	for i, l := range snap {
		ids[i] = l.ID()
	}
	return ids
}
