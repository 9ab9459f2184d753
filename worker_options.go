package drain

import "time"

type workerOptions struct {
	pollInterval time.Duration
	cleanup      CleanupFunc
	stopOnError  bool
}

func defaultWorkerOptions() *workerOptions {
	return &workerOptions{
		pollInterval: 0, // Default is no pause between steps
		cleanup:      nil,
		stopOnError:  false,
	}
}

type WorkerOption func(*workerOptions)

func buildWorkerOptions(opts ...WorkerOption) *workerOptions {
	options := defaultWorkerOptions()
	for _, fn := range opts {
		fn(options)
	}
	return options
}

// WithPollInterval sets the pause between work steps. The worker re-checks
// the cancellation token before every step, so this interval is the upper
// bound on how long a cancellation can go unnoticed; the pause itself is
// cut short when cancellation arrives. Values of 0 or less disable the
// pause. Default is no pause.
// It can be passed to Orchestrator.Go.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(options *workerOptions) {
		options.pollInterval = d
	}
}

// WithCleanup sets the cleanup routine the worker runs after observing
// cancellation and before deregistering. The worker is only deregistered
// once cleanup has returned (or permanently stopped by panicking), never
// while its resources are still live. Default is no cleanup.
// It can be passed to Orchestrator.Go.
func WithCleanup(fn CleanupFunc) WorkerOption {
	return func(options *workerOptions) {
		options.cleanup = fn
	}
}

// WithStopOnError sets whether an error returned by the worker's step
// function should trigger a full shutdown via StopWithError. When "false"
// the error is logged and only this worker stops (it still runs cleanup
// and deregisters).
// Default is "false".
// It can be passed to Orchestrator.Go.
func WithStopOnError(stop bool) WorkerOption {
	return func(options *workerOptions) {
		options.stopOnError = stop
	}
}
