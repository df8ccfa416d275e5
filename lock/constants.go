package lock

// Type distinguishes the two lock modes a name can be requested in.
type Type string

const (
	// Reader requests a shared lock: any number of Readers may hold the
	// same name concurrently, provided no Writer holds or precedes them.
	Reader Type = "reader"

	// Writer requests an exclusive lock: mutually exclusive with both
	// other Writers and with Readers on the same name.
	Writer Type = "writer"
)

// Status is a Lock's position in its lifecycle state machine (see state.go).
type Status string

const (
	// Acquiring is the initial status: the lock has been enqueued but has
	// not yet been admitted or rejected.
	Acquiring Status = "acquiring"

	// Acquired means the lock is currently held.
	Acquired Status = "acquired"

	// Releasing means a release has been requested but not yet confirmed
	// by the adapter.
	Releasing Status = "releasing"

	// Released is terminal: the lock's store presence has been removed.
	Released Status = "released"

	// Rejected is terminal: the lock never reached Acquired.
	Rejected Status = "rejected"
)

const (
	// DefaultPullIntervalMs is used when Options.PullIntervalMs is unset.
	DefaultPullIntervalMs = 25

	// DefaultGCIntervalMs is used when a caller opts into GC without
	// specifying an interval.
	DefaultGCIntervalMs = 60000
)
