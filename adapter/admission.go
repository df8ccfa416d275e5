package adapter

import "github.com/lockfleet/rwlock/lock"

// Entry is the minimal per-name queue record both adapters build their
// admission decision from: an id and a type, in insertion order.
type Entry struct {
	ID   string
	Type lock.Type
}

// Admitted implements the FIFO admission rule shared by every adapter (the
// InMemory adapter's reference semantics, and the distributed adapter's
// client-side evaluation of a queue document):
//
//   - A Writer is admitted iff it is the head of the queue.
//   - A Reader is admitted iff no Writer precedes it in the queue, i.e. the
//     first entry that is either this Reader or any Writer is this Reader.
func Admitted(queue []Entry, id string, typ lock.Type) bool {
	if typ == lock.Writer {
		return len(queue) > 0 && queue[0].ID == id
	}
	for _, e := range queue {
		if e.ID == id {
			return true // reached ourselves before any blocking writer
		}
		if e.Type == lock.Writer {
			return false // a writer ahead of us blocks admission
		}
	}
	return false // id not found in queue at all
}
