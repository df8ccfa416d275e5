package lock

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lockfleet/rwlock/clock"
)

// Lock is the identity and lifecycle state of one requested lock instance.
// Its identity (ID, Name, Type, Options) is immutable after construction;
// its lifecycle state is guarded by an internal mutex since it is read
// concurrently by the owning acquire/release call, the registry iterator,
// and the GC refresh pass.
type Lock struct {
	id      string
	name    string
	typ     Type
	options Options
	clock   clock.Clock

	mu         sync.RWMutex
	status     Status
	createdAt  time.Time
	settledAt  time.Time
	releasedAt time.Time
	reason     error
}

// New constructs a Lock in the Acquiring state, with a freshly generated
// uuid as its id.
func New(name string, typ Type, options Options, clk clock.Clock) *Lock {
	if clk == nil {
		clk = clock.New()
	}
	return &Lock{
		id:        uuid.NewString(),
		name:      name,
		typ:       typ,
		options:   options,
		clock:     clk,
		status:    Acquiring,
		createdAt: clk.Now(),
	}
}

// NewReader constructs a Reader Lock. Convenience wrapper around New.
func NewReader(name string, options Options, clk clock.Clock) *Lock {
	return New(name, Reader, options, clk)
}

// NewWriter constructs a Writer Lock. Convenience wrapper around New.
func NewWriter(name string, options Options, clk clock.Clock) *Lock {
	return New(name, Writer, options, clk)
}

// ID returns the process-unique opaque identifier for this lock instance.
func (l *Lock) ID() string { return l.id }

// Name returns the coordination key this lock was requested on.
func (l *Lock) Name() string { return l.name }

// Type returns Reader or Writer.
func (l *Lock) Type() Type { return l.typ }

// IsWriter reports whether this lock is an exclusive (Writer) lock.
func (l *Lock) IsWriter() bool { return l.typ == Writer }

// Options returns the lock's acquisition options.
func (l *Lock) Options() Options { return l.options }

// PullInterval returns the effective poll interval for this lock.
func (l *Lock) PullInterval() time.Duration {
	return time.Duration(l.options.pullInterval()) * time.Millisecond
}

// AcquireTimeout returns the configured acquire-timeout and whether one was
// set at all.
func (l *Lock) AcquireTimeout() (time.Duration, bool) {
	if l.options.AcquireTimeoutMs <= 0 {
		return 0, false
	}
	return time.Duration(l.options.AcquireTimeoutMs) * time.Millisecond, true
}

// CreatedAt returns when the Lock was constructed.
func (l *Lock) CreatedAt() time.Time { return l.createdAt }

// Status returns the current lifecycle status.
func (l *Lock) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// IsAcquiring reports whether the lock is still in the Acquiring state.
func (l *Lock) IsAcquiring() bool {
	return l.Status() == Acquiring
}

// SettledAt returns when the lock reached Acquired or Rejected, and whether
// it has settled yet.
func (l *Lock) SettledAt() (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.settledAt, !l.settledAt.IsZero()
}

// ReleasedAt returns when the lock reached Released, and whether it has.
func (l *Lock) ReleasedAt() (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.releasedAt, !l.releasedAt.IsZero()
}

// SettledIn returns settledAt - createdAt, and whether the lock has settled.
func (l *Lock) SettledIn() (time.Duration, bool) {
	settledAt, ok := l.SettledAt()
	if !ok {
		return 0, false
	}
	return settledAt.Sub(l.createdAt), true
}

// AcquiredFor returns releasedAt - settledAt, and whether the lock has been
// released.
func (l *Lock) AcquiredFor() (time.Duration, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.releasedAt.IsZero() || l.settledAt.IsZero() {
		return 0, false
	}
	return l.releasedAt.Sub(l.settledAt), true
}

// Reason returns the failure cause recorded when the lock was rejected. Nil
// unless Status() == Rejected.
func (l *Lock) Reason() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reason
}

// transition attempts to move the lock to `to`, stamping timestamps as
// required by spec. It never mutates state on an illegal transition.
func (l *Lock) transition(to Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transitionLocked(to)
}

func (l *Lock) transitionLocked(to Status) error {
	from := l.status
	if !canTransition(from, to) {
		return &WorkflowError{Lock: l, From: from, To: to}
	}

	now := l.clock.Now()
	switch to {
	case Acquired, Rejected:
		l.settledAt = now
	case Released:
		if l.settledAt.IsZero() {
			panic("lock: internal error: entering Released without a settledAt")
		}
		l.releasedAt = now
	}
	l.status = to
	return nil
}

// MarkAcquired transitions the lock from Acquiring to Acquired. Called by
// an Adapter on successful admission.
func (l *Lock) MarkAcquired() error {
	return l.transition(Acquired)
}

// Reject records reason and transitions the lock from Acquiring to
// Rejected.
func (l *Lock) Reject(reason error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.transitionLocked(Rejected); err != nil {
		return err
	}
	l.reason = reason
	return nil
}

// MarkReleasing transitions the lock from Acquired to Releasing.
func (l *Lock) MarkReleasing() error {
	return l.transition(Releasing)
}

// MarkReleased transitions the lock to Released. Legal from either Acquired
// or Releasing.
func (l *Lock) MarkReleased() error {
	return l.transition(Released)
}
