package drain_test

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkolk/drain"
)

// fakeNotifier is a Notifier that captures the registered channel so tests
// can raise signals without involving the operating system.
type fakeNotifier struct {
	mu   sync.Mutex
	ch   chan<- os.Signal
	sigs []os.Signal
}

var _ drain.Notifier = &fakeNotifier{}

func (f *fakeNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ch = c
	f.sigs = sig
}

func (f *fakeNotifier) Raise(sig os.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case f.ch <- sig:
	default:
		// Channel full, the pending signal has not been consumed yet.
		// Real signal delivery drops in this case too.
	}
}

func (f *fakeNotifier) Subscribed() []os.Signal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sigs
}

func TestListener(t *testing.T) {
	t.Parallel()

	t.Run("it should error when no signals are subscribed", func(t *testing.T) {
		t.Parallel()

		_, err := drain.NewListener()
		require.ErrorIs(t, err, drain.ErrNoSignals)

		_, err = drain.NewListenerWithNotifier(&fakeNotifier{})
		require.ErrorIs(t, err, drain.ErrNoSignals)
	})

	t.Run("it should subscribe to the requested signals", func(t *testing.T) {
		t.Parallel()

		n := &fakeNotifier{}
		_, err := drain.NewListenerWithNotifier(n, drain.DefaultSignals...)
		require.NoError(t, err)

		assert.Equal(t, drain.DefaultSignals, n.Subscribed())
	})

	t.Run("it should map every subscribed signal to the same shutdown event", func(t *testing.T) {
		t.Parallel()

		for _, sig := range []os.Signal{os.Interrupt, syscall.SIGTERM} {
			n := &fakeNotifier{}
			l, err := drain.NewListenerWithNotifier(n, drain.DefaultSignals...)
			require.NoError(t, err)

			n.Raise(sig)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			ev, err := l.Wait(ctx)
			cancel()

			require.NoError(t, err)
			assert.Equal(t, drain.ShutdownSignal{}, ev)
		}
	})

	t.Run("it should return the context error when canceled before a signal arrives", func(t *testing.T) {
		t.Parallel()

		n := &fakeNotifier{}
		l, err := drain.NewListenerWithNotifier(n, drain.DefaultSignals...)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = l.Wait(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}
