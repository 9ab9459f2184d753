package drain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	ErrAlreadyStopped = errors.New("already stopped")
	ErrDrainTimeout   = errors.New("timed out waiting for workers to drain")
)

// State is the orchestrator's position in its shutdown lifecycle.
type State int32

const (
	// StateStarting means workers may be registered and launched.
	StateStarting State = iota
	// StateRunning means the orchestrator is blocked waiting for a
	// shutdown signal.
	StateRunning
	// StateShutdownRequested means a shutdown signal has arrived and the
	// cancellation token is about to be (or has just been) triggered.
	StateShutdownRequested
	// StateDraining means the orchestrator is waiting for all outstanding
	// workers to finish cleanup and deregister.
	StateDraining
	// StateTerminated means every worker has deregistered and the process
	// may exit.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateShutdownRequested:
		return "shutdown-requested"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Orchestrator composes the signal listener, cancellation token and
// completion tracker into one shutdown sequence: it launches workers,
// blocks until a stop request arrives, broadcasts cancellation, and waits
// for every worker to finish cleanup before letting the process exit.
// Create a new instance using New().
type Orchestrator struct {
	options *orchestratorOptions

	token    *Token
	tracker  *Tracker
	listener *Listener

	rootCtx    context.Context
	cancelRoot context.CancelFunc

	state atomic.Int32

	stopOnce sync.Once
	stopCh   chan struct{}

	errsLock sync.Mutex
	errs     []error

	addWorkersLock sync.Mutex
	isStopping     bool
}

// New creates a new shutdown orchestrator and subscribes it to the
// configured stop signals. A subscription failure (an empty signal set) is
// fatal and is returned before any worker can be registered.
//
// Options can be provided to customize behavior:
//   - WithLogger: Sets a custom logger for lifecycle events
//   - WithSignals: Sets the OS signals that trigger shutdown
//   - WithNotifier: Sets a custom signal notification source
//   - WithDrainTimeout: Bounds how long Run waits for workers to drain
//
// Example:
//
//	o := drain.Must(drain.New(
//	    drain.WithLogger(drain.NewStdLogger(log.Default())),
//	))
//
//	drain.Must(o.Go("poller", func(ctx context.Context) error {
//	    // One unit of work
//	    return nil
//	}, drain.WithPollInterval(time.Second)))
//
//	// Block until a signal arrives, then drain
//	if err := o.Run(); err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Orchestrator, error) {
	options := buildOptions(opts...)

	listener, err := NewListenerWithNotifier(options.notifier, options.signals...)
	if err != nil {
		return nil, fmt.Errorf("subscribe to shutdown signals: %w", err)
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	o := &Orchestrator{
		options:    options,
		token:      NewToken(),
		tracker:    NewTracker(),
		listener:   listener,
		rootCtx:    rootCtx,
		cancelRoot: cancelRoot,
		stopCh:     make(chan struct{}),
		errs:       make([]error, 0),
	}
	o.state.Store(int32(StateStarting))
	return o, nil
}

// Go registers a worker with the completion tracker and launches it,
// returning the worker's handle. The worker calls step in a loop, checking
// the cancellation token before every iteration; once canceled it runs its
// cleanup (see WithCleanup) and deregisters.
//
// Registration completes before the worker goroutine starts, so a shutdown
// beginning immediately after Go returns is guaranteed to wait for this
// worker.
//
// Once shutdown has begun no new work is accepted and Go returns
// ErrAlreadyStopped.
func (o *Orchestrator) Go(name string, step StepFunc, opts ...WorkerOption) (*Handle, error) {
	o.addWorkersLock.Lock()
	defer o.addWorkersLock.Unlock()

	if o.isStopping {
		// Can't add a worker since we are already stopping
		return nil, ErrAlreadyStopped
	}

	handle := o.tracker.Register(name)
	w := &worker{
		options:       buildWorkerOptions(opts...),
		handle:        handle,
		token:         o.token,
		step:          step,
		logger:        o.options.logger,
		stopWithError: o.StopWithError,
	}

	o.options.logger.Info(fmt.Sprintf("Worker \"%s\" registered", name))

	// Cleanup gets a context that survives root cancellation so it can
	// still make blocking calls while draining.
	go w.run(o.rootCtx, context.WithoutCancel(o.rootCtx))
	return handle, nil
}

// Run drives the shutdown sequence to completion. It blocks until a
// subscribed signal arrives (or Stop is called), triggers the cancellation
// token, stops accepting new workers, and waits for every outstanding
// worker to deregister before returning.
//
// It returns nil after a clean drain. A drain that exceeds the configured
// timeout returns ErrDrainTimeout, and errors passed to StopWithError (or
// escalated by workers via WithStopOnError) are joined into the result.
// Run must be called at most once.
func (o *Orchestrator) Run() error {
	o.state.Store(int32(StateRunning))
	o.options.logger.Info("Running, waiting for shutdown signal...")

	select {
	case <-o.listener.ch:
		o.options.logger.Info("Shutdown signal received")
	case <-o.stopCh:
		o.options.logger.Info("Stop requested")
	}

	o.state.Store(int32(StateShutdownRequested))

	o.addWorkersLock.Lock()
	o.isStopping = true // Disable adding more workers
	o.addWorkersLock.Unlock()

	o.token.Trigger()
	o.cancelRoot()

	o.state.Store(int32(StateDraining))
	o.options.logger.Info("Draining workers...")

	if timedOut := o.tracker.WaitTimeout(o.options.drainTimeout); timedOut {
		o.options.logger.Error("Timed-out while waiting for workers to drain, continuing without waiting...")
		o.appendError(ErrDrainTimeout)
	}

	o.state.Store(int32(StateTerminated))
	o.options.logger.Info("Terminated")

	o.errsLock.Lock()
	defer o.errsLock.Unlock()
	return errors.Join(o.errs...)
}

// Stop requests shutdown programmatically, as if a signal had arrived.
// Multiple calls are supported and are no-ops after the first.
func (o *Orchestrator) Stop() {
	o.StopWithError(nil)
}

// StopWithError requests shutdown with an error. The error will be part of
// the joined error returned by Run. Multiple calls are supported and their
// errors are all collected.
func (o *Orchestrator) StopWithError(err error) {
	if err != nil {
		o.options.logger.Error("Stopping with error: " + err.Error())
		o.appendError(err)
	}

	o.stopOnce.Do(func() {
		close(o.stopCh)
	})
}

func (o *Orchestrator) appendError(err error) {
	o.errsLock.Lock()
	defer o.errsLock.Unlock()
	o.errs = append(o.errs, err)
}

// State returns the orchestrator's current lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Token returns the orchestrator's cancellation token, for workers that are
// managed outside Go.
func (o *Orchestrator) Token() *Token {
	return o.token
}

// Tracker returns the orchestrator's completion tracker, for workers that
// are managed outside Go. Callers must register before their worker starts
// and are expected to deregister through Handle.Complete on every exit
// path.
func (o *Orchestrator) Tracker() *Tracker {
	return o.tracker
}
