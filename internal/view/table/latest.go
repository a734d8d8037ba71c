package table

import "sync"

// Latest enforces last-request-wins ordering for concurrent fetches of the
// same view: a fetch superseded by a newer one may still complete, but its
// result is discarded instead of overwriting the newer state.
type Latest[T any] struct {
	mu    sync.Mutex
	seq   uint64
	value T
	set   bool
}

// Begin registers a new fetch and returns its ticket.
func (l *Latest[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	return l.seq
}

// Commit stores the result for a ticket. It reports false, leaving the
// current value untouched, when a newer fetch has begun since.
func (l *Latest[T]) Commit(ticket uint64, value T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ticket != l.seq {
		return false
	}
	l.value = value
	l.set = true
	return true
}

// Value returns the most recently committed result.
func (l *Latest[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.set
}
