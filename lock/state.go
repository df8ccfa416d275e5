package lock

// transitions enumerates the legal edges of the lock lifecycle state
// machine. Anything not listed here is refused with a *WorkflowError.
//
//	Acquiring -> Acquired | Rejected
//	Acquired  -> Releasing | Released
//	Releasing -> Released
var transitions = map[Status]map[Status]bool{
	Acquiring: {Acquired: true, Rejected: true},
	Acquired:  {Releasing: true, Released: true},
	Releasing: {Released: true},
}

// canTransition reports whether moving from `from` to `to` is a legal edge.
func canTransition(from, to Status) bool {
	return transitions[from][to]
}
