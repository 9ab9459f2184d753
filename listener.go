package drain

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

// ErrNoSignals is returned when a listener is created without any signals
// to subscribe to.
var ErrNoSignals = errors.New("no signals to subscribe to")

// DefaultSignals is the set of external interruption categories a process
// is normally stopped with: operator interrupt and termination request.
var DefaultSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// ShutdownSignal is the single internal event every subscribed OS signal is
// collapsed into. It carries no payload beyond "stop now".
type ShutdownSignal struct{}

// Notifier abstracts signal registration so that a fake notification source
// can be injected during testing.
type Notifier interface {
	// Notify registers the provided channel to receive the given signals.
	Notify(c chan<- os.Signal, sig ...os.Signal)
}

// osNotifier is the production Notifier, delegating to the standard
// library's signal.Notify.
type osNotifier struct{}

func (osNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

// Listener adapts OS-level interruption signals into ShutdownSignal events.
// Every subscribed signal category maps to the same event; the listener
// does not distinguish between them.
type Listener struct {
	ch chan os.Signal
}

// NewListener subscribes to the given signals using the operating system as
// the notification source. It returns ErrNoSignals if the signal set is
// empty; this is a startup error and must abort the process before any
// worker is registered.
func NewListener(sigs ...os.Signal) (*Listener, error) {
	return NewListenerWithNotifier(osNotifier{}, sigs...)
}

// NewListenerWithNotifier is like NewListener but uses the provided
// Notifier as the notification source. It is useful for injecting mock
// signal sources during testing.
func NewListenerWithNotifier(n Notifier, sigs ...os.Signal) (*Listener, error) {
	if len(sigs) == 0 {
		return nil, ErrNoSignals
	}

	ch := make(chan os.Signal, 1)
	n.Notify(ch, sigs...)

	return &Listener{ch: ch}, nil
}

// Wait blocks until one of the subscribed signals arrives and returns the
// corresponding ShutdownSignal. It returns at most once per raised signal.
// If the context is canceled first, it returns the context's error.
func (l *Listener) Wait(ctx context.Context) (ShutdownSignal, error) {
	select {
	case <-l.ch:
		return ShutdownSignal{}, nil
	case <-ctx.Done():
		return ShutdownSignal{}, ctx.Err()
	}
}
