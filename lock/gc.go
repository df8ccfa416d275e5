package lock

import "time"

// GarbageCycle summarizes one GC pass: how many stale queue entries were
// collected and how many locally-owned heartbeats were refreshed, plus how
// long the pass took. Returned by Adapter.GC and re-emitted by the Locker
// as a GarbageCycle event.
type GarbageCycle struct {
	CollectedCount int
	RefreshedCount int
	Took           time.Duration
}
