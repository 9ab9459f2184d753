package drain

import (
	"os"
	"time"
)

type orchestratorOptions struct {
	logger       Logger
	notifier     Notifier
	signals      []os.Signal
	drainTimeout time.Duration
}

func defaultOptions() *orchestratorOptions {
	return &orchestratorOptions{
		logger:       NewNoopLogger(),
		notifier:     osNotifier{},
		signals:      DefaultSignals,
		drainTimeout: -1, // Default is no drain timeout
	}
}

type Option func(*orchestratorOptions)

func buildOptions(opts ...Option) *orchestratorOptions {
	options := defaultOptions()
	for _, fn := range opts {
		fn(options)
	}
	return options
}

// WithLogger sets the logger for the orchestrator and its workers. Default
// is the NoopLogger.
func WithLogger(logger Logger) Option {
	return func(options *orchestratorOptions) {
		options.logger = logger
	}
}

// WithSignals sets the OS signals that trigger shutdown. Default is
// DefaultSignals (interrupt and termination request).
func WithSignals(sigs ...os.Signal) Option {
	return func(options *orchestratorOptions) {
		options.signals = sigs
	}
}

// WithNotifier sets the signal notification source. Default is the
// operating system. It is primarily useful for injecting mock sources
// during testing.
func WithNotifier(n Notifier) Option {
	return func(options *orchestratorOptions) {
		options.notifier = n
	}
}

// WithDrainTimeout sets the time Run will wait for outstanding workers to
// finish cleanup after cancellation. Any value less than 0 disables the
// timeout and will cause Run to wait indefinitely; a worker whose cleanup
// never returns then blocks shutdown forever. Default is no timeout (-1).
// When the timeout is hit, Run stops waiting and returns ErrDrainTimeout.
func WithDrainTimeout(d time.Duration) Option {
	return func(options *orchestratorOptions) {
		options.drainTimeout = d
	}
}
