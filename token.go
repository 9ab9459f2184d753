package drain

import (
	"sync"
	"sync/atomic"
)

// Token is a write-once cancellation latch shared between the orchestrator
// and its workers. It starts out active and transitions to canceled exactly
// once; the transition is irreversible and observable by any number of
// concurrent readers without locking.
//
// A Token is owned by the component that triggers it (usually an
// Orchestrator) and referenced, never owned, by every worker that polls it.
type Token struct {
	triggerOnce sync.Once
	canceled    atomic.Bool
	done        chan struct{}
}

// NewToken creates a new Token in the active state.
func NewToken() *Token {
	return &Token{
		done: make(chan struct{}),
	}
}

// Trigger transitions the token from active to canceled. It is idempotent:
// calling it any number of times, including concurrently from multiple
// goroutines, has the same observable effect as calling it once. It never
// blocks, errors, or panics.
//
// Once Trigger returns, every subsequent call to Canceled, from any
// goroutine, returns true.
func (t *Token) Trigger() {
	t.triggerOnce.Do(func() {
		t.canceled.Store(true)
		close(t.done)
	})
}

// Canceled reports whether the token has been triggered. It never blocks
// and is safe to call from arbitrarily many concurrent readers, making it
// suitable as the per-iteration check in a worker's poll loop.
func (t *Token) Canceled() bool {
	return t.canceled.Load()
}

// Done returns a channel that is closed when the token is triggered.
// It lets blocking waiters (select statements, bounded pauses) observe
// cancellation without polling.
func (t *Token) Done() <-chan struct{} {
	return t.done
}
