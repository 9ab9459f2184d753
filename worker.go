package drain

import (
	"context"
	"fmt"
	"time"
)

// StepFunc is one unit of a worker's work. The context is canceled when
// shutdown begins, so steps that block internally can bail out early;
// returning the context's error in that case is fine and is not treated as
// a failure once cancellation has been requested.
type StepFunc func(ctx context.Context) error

// CleanupFunc releases a worker's resources after it has observed
// cancellation. It receives a context that is NOT canceled, so cleanup can
// still perform blocking calls (flushing buffers, closing connections).
type CleanupFunc func(ctx context.Context) error

// worker runs a step function in a poll loop until its token is canceled,
// then runs cleanup and deregisters its handle.
type worker struct {
	options *workerOptions

	handle *Handle
	token  *Token
	step   StepFunc
	logger Logger

	// stopWithError escalates a step error to a full shutdown when the
	// WithStopOnError option is set.
	stopWithError func(error)
}

// run is the worker goroutine body. The deferred Complete is bound to the
// goroutine's lifetime: it executes on normal return, on step error, and
// when either the step or the cleanup panics, so the tracker can never be
// left waiting on a worker that has permanently stopped.
func (w *worker) run(ctx, cleanupCtx context.Context) {
	defer w.handle.Complete()

	w.handle.markRunning()
	w.loop(ctx)

	w.handle.markCleaningUp()
	w.cleanup(cleanupCtx)

	w.logger.Info(fmt.Sprintf("Worker \"%s\" completed", w.handle.Name()))
}

// loop calls the step function until the token is canceled. The token check
// is non-blocking and happens before every step, so the worst-case latency
// between cancellation and the worker noticing it is one poll interval plus
// the duration of a single step.
func (w *worker) loop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(fmt.Sprintf("Worker \"%s\" panicked: %v, proceeding to cleanup", w.handle.Name(), r))
		}
	}()

	for !w.token.Canceled() {
		if err := w.step(ctx); err != nil {
			if w.token.Canceled() {
				// The step was interrupted by cancellation, not a real
				// failure. Fall through to cleanup.
				return
			}

			w.logger.Error(fmt.Sprintf("Worker \"%s\" step returned error: %s", w.handle.Name(), err.Error()))
			if w.options.stopOnError {
				w.stopWithError(fmt.Errorf("worker \"%s\": %w", w.handle.Name(), err))
			}
			return
		}

		if w.options.pollInterval > 0 {
			w.pause()
		}
	}
}

// pause sleeps for the poll interval, waking early if the token is
// triggered so cancellation latency stays bounded by the interval.
func (w *worker) pause() {
	timer := time.NewTimer(w.options.pollInterval)
	select {
	case <-w.token.Done():
		// Make sure we don't leak any resources
		if !timer.Stop() {
			<-timer.C
		}
	case <-timer.C:
	}
}

// cleanup runs the worker's cleanup routine. Failures and panics are
// reported to the logger and never propagated: a failed cleanup must not
// block the drain, and the deferred Complete in run still deregisters the
// worker afterwards.
func (w *worker) cleanup(ctx context.Context) {
	if w.options.cleanup == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(fmt.Sprintf("Worker \"%s\" panicked during cleanup: %v", w.handle.Name(), r))
		}
	}()

	if err := w.options.cleanup(ctx); err != nil {
		w.logger.Error(fmt.Sprintf("Worker \"%s\" cleanup returned error: %s", w.handle.Name(), err.Error()))
	}
}
