package drain

import (
	"sync"
	"sync/atomic"
	"time"
)

// HandleState describes where a worker is in its lifecycle.
type HandleState int32

const (
	// HandleRegistered means the worker has been registered with the
	// tracker but has not started running yet.
	HandleRegistered HandleState = iota
	// HandleRunning means the worker is executing its work loop.
	HandleRunning
	// HandleCleaningUp means the worker observed cancellation and is
	// running its cleanup routine.
	HandleCleaningUp
	// HandleCompleted means the worker has deregistered from the tracker.
	HandleCompleted
)

func (s HandleState) String() string {
	switch s {
	case HandleRegistered:
		return "registered"
	case HandleRunning:
		return "running"
	case HandleCleaningUp:
		return "cleaning-up"
	case HandleCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Tracker is a concurrency-safe counter of outstanding workers. Workers are
// registered before they start, deregister on every exit path, and Wait
// blocks until the count reaches zero.
//
// Create a new instance using NewTracker().
type Tracker struct {
	mu    sync.Mutex
	count int

	// idle is non-nil while count > 0 and is closed when the count drops
	// back to zero. A fresh channel is created whenever the count rises
	// from zero so the tracker can be reused across drain cycles in tests.
	idle chan struct{}
}

// NewTracker creates a new tracker with no outstanding workers.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Register adds one outstanding worker and returns its handle. It must be
// called by the goroutine that launches the worker, strictly before the
// worker starts running. Registering from inside the worker itself races
// with Wait: the tracker could observe zero outstanding workers before the
// worker's increment lands.
func (t *Tracker) Register(name string) *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count == 0 {
		t.idle = make(chan struct{})
	}
	t.count++

	h := &Handle{
		tracker: t,
		name:    name,
	}
	h.state.Store(int32(HandleRegistered))
	return h
}

// Deregister removes one outstanding worker. Calling it without a matching
// prior Register is a programming error and panics rather than letting the
// counter go negative. Prefer Handle.Complete, which guarantees exactly one
// matching deregistration per handle.
func (t *Tracker) Deregister() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count == 0 {
		panic("drain: Deregister called without a matching Register")
	}

	t.count--
	if t.count == 0 {
		close(t.idle)
		t.idle = nil
	}
}

// Outstanding returns the number of workers that have registered but not
// yet deregistered.
func (t *Tracker) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Wait blocks until the count of outstanding workers reaches zero. If the
// count is already zero it returns immediately. Every deregistration that
// brings the count to zero happens before Wait returns.
func (t *Tracker) Wait() {
	t.WaitTimeout(-1)
}

// WaitTimeout is like Wait but gives up after the given duration, returning
// true if the timeout was hit while workers were still outstanding. Any
// value less than 0 disables the timeout and waits indefinitely.
func (t *Tracker) WaitTimeout(d time.Duration) (timedOut bool) {
	t.mu.Lock()
	idle := t.idle
	t.mu.Unlock()

	if idle == nil {
		// Nothing outstanding
		return false
	}

	if d < 0 {
		<-idle
		return false
	}

	timer := time.NewTimer(d)
	select {
	case <-idle:
		// Make sure we don't leak any resources
		if !timer.Stop() {
			<-timer.C
		}
		return false
	case <-timer.C:
		return true
	}
}

// Handle identifies one registered worker. It moves through the states
// registered, running, cleaning-up and completed, and performs exactly one
// deregistration from its tracker when completed.
//
// Do not create a Handle directly, obtain one from Tracker.Register.
type Handle struct {
	tracker *Tracker
	name    string

	state        atomic.Int32
	completeOnce sync.Once
}

// Name returns the name the worker was registered under.
func (h *Handle) Name() string {
	return h.name
}

// State returns the worker's current lifecycle state.
func (h *Handle) State() HandleState {
	return HandleState(h.state.Load())
}

// Complete marks the worker as completed and deregisters it from the
// tracker. It is idempotent: calling it more than once deregisters exactly
// once, so it is safe to defer alongside explicit calls on error paths.
func (h *Handle) Complete() {
	h.completeOnce.Do(func() {
		h.state.Store(int32(HandleCompleted))
		h.tracker.Deregister()
	})
}

func (h *Handle) markRunning() {
	h.state.Store(int32(HandleRunning))
}

func (h *Handle) markCleaningUp() {
	h.state.Store(int32(HandleCleaningUp))
}
