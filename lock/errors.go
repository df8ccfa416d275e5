package lock

import "fmt"

// LockerError is the generic error category. LockError embeds it, and
// errors.As with a *LockerError target also matches a *LockError; the other
// error types below (WorkflowError, AcquireTimeoutError, AdapterError) are
// separate types that do not embed it.
type LockerError struct {
	msg   string
	cause error
}

func (e *LockerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("lock: %s: %v", e.msg, e.cause)
	}
	return fmt.Sprintf("lock: %s", e.msg)
}

func (e *LockerError) Unwrap() error { return e.cause }

// NewLockerError builds a generic LockerError, optionally wrapping cause.
func NewLockerError(msg string, cause error) *LockerError {
	return &LockerError{msg: msg, cause: cause}
}

// LockError is a LockerError attached to a specific Lock, used for
// adapter/acquire failures tied to one lock instance.
type LockError struct {
	*LockerError
	Lock *Lock
}

// NewLockError builds a LockError for the given lock and cause.
func NewLockError(l *Lock, msg string, cause error) *LockError {
	return &LockError{LockerError: NewLockerError(msg, cause), Lock: l}
}

func (e *LockError) Error() string {
	name := ""
	if e.Lock != nil {
		name = e.Lock.Name()
	}
	return fmt.Sprintf("lock %q: %s", name, e.LockerError.Error())
}

// As lets errors.As match a *LockError against a *LockerError target.
func (e *LockError) As(target any) bool {
	if t, ok := target.(**LockerError); ok {
		*t = e.LockerError
		return true
	}
	return false
}

// WorkflowError reports an illegal state-machine transition attempt. The
// Lock's state is left unchanged when this error is returned.
type WorkflowError struct {
	Lock *Lock
	From Status
	To   Status
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("lock %q: illegal transition %s -> %s", e.Lock.Name(), e.From, e.To)
}

// AcquireTimeoutError indicates that acquireTimeoutMs elapsed before the
// lock was admitted. It is an expected, surfaced outcome, not a bug.
type AcquireTimeoutError struct {
	Lock *Lock
}

func (e *AcquireTimeoutError) Error() string {
	return fmt.Sprintf("lock %q: timed out waiting to acquire", e.Lock.Name())
}

// AdapterError reports an adapter-level failure not tied to any single
// lock, such as a failed Setup call.
type AdapterError struct {
	Op    string
	cause error
}

// NewAdapterError builds an AdapterError for operation op.
func NewAdapterError(op string, cause error) *AdapterError {
	return &AdapterError{Op: op, cause: cause}
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter: %s: %v", e.Op, e.cause)
}

func (e *AdapterError) Unwrap() error { return e.cause }
