package lock

import "fmt"

// Options carries the caller-tunable parameters for a single lock
// acquisition. Zero values mean "unset", so a caller can build an Options
// value with a plain struct literal. Negative values are rejected by
// Validate, which the Locker calls before each acquisition.
type Options struct {
	// AcquireTimeoutMs, if set (> 0), bounds how long Acquire may wait
	// before the lock is rejected with an AcquireTimeoutError. Zero means
	// wait indefinitely.
	AcquireTimeoutMs int

	// PullIntervalMs is the delay between admission re-checks. Defaults to
	// DefaultPullIntervalMs when zero.
	PullIntervalMs int
}

// Validate checks that any set fields are positive, per spec.md's
// "acquireTimeoutMs and pullIntervalMs, when set, must be > 0" invariant.
func (o Options) Validate() error {
	if o.AcquireTimeoutMs < 0 {
		return fmt.Errorf("lock: acquireTimeoutMs must be > 0, got %d", o.AcquireTimeoutMs)
	}
	if o.PullIntervalMs < 0 {
		return fmt.Errorf("lock: pullIntervalMs must be > 0, got %d", o.PullIntervalMs)
	}
	return nil
}

// pullInterval returns the effective poll interval, applying the default.
func (o Options) pullInterval() int {
	if o.PullIntervalMs > 0 {
		return o.PullIntervalMs
	}
	return DefaultPullIntervalMs
}
