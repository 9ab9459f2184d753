package drain_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wkolk/drain"
)

func TestTracker(t *testing.T) {
	t.Parallel()

	t.Run("it should return from Wait immediately when no workers were ever registered", func(t *testing.T) {
		t.Parallel()

		tr := drain.NewTracker()

		done := make(chan struct{})
		go func() {
			tr.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Expected behavior - Wait returned without blocking
		case <-time.After(time.Second):
			assert.Fail(t, "Wait should return immediately when the count is zero")
		}
	})

	t.Run("it should block Wait until every registered worker has deregistered", func(t *testing.T) {
		t.Parallel()

		tr := drain.NewTracker()
		handles := []*drain.Handle{
			tr.Register("a"),
			tr.Register("b"),
			tr.Register("c"),
		}
		assert.Equal(t, 3, tr.Outstanding())

		done := make(chan struct{})
		go func() {
			tr.Wait()
			close(done)
		}()

		for _, h := range handles[:2] {
			h.Complete()
		}

		select {
		case <-done:
			assert.Fail(t, "Wait should still block while one worker is outstanding")
		case <-time.After(100 * time.Millisecond):
			// Expected behavior - Wait is blocking
		}

		handles[2].Complete()

		select {
		case <-done:
			// Expected behavior - Wait returned once the count hit zero
		case <-time.After(time.Second):
			assert.Fail(t, "Wait should return after the last worker deregisters")
		}
		assert.Equal(t, 0, tr.Outstanding())
	})

	t.Run("it should support concurrent deregistrations", func(t *testing.T) {
		t.Parallel()

		tr := drain.NewTracker()
		var handles []*drain.Handle
		for i := 0; i < 50; i++ {
			handles = append(handles, tr.Register("worker"))
		}

		var wg sync.WaitGroup
		wg.Add(len(handles))
		for _, h := range handles {
			h := h
			go func() {
				defer wg.Done()
				h.Complete()
			}()
		}
		wg.Wait()

		tr.Wait()
		assert.Equal(t, 0, tr.Outstanding())
	})

	t.Run("it should panic when Deregister is called without a matching Register", func(t *testing.T) {
		t.Parallel()

		tr := drain.NewTracker()
		require.PanicsWithValue(t, "drain: Deregister called without a matching Register", tr.Deregister)
	})

	t.Run("it should deregister exactly once per handle even when Complete is called twice", func(t *testing.T) {
		t.Parallel()

		tr := drain.NewTracker()
		h1 := tr.Register("a")
		h2 := tr.Register("b")

		h1.Complete()
		h1.Complete() // Absorbed, must not decrement on behalf of h2

		assert.Equal(t, 1, tr.Outstanding())
		h2.Complete()
		assert.Equal(t, 0, tr.Outstanding())
	})

	t.Run("it should track handle lifecycle state", func(t *testing.T) {
		t.Parallel()

		tr := drain.NewTracker()
		h := tr.Register("db-flusher")

		assert.Equal(t, "db-flusher", h.Name())
		assert.Equal(t, drain.HandleRegistered, h.State())

		h.Complete()
		assert.Equal(t, drain.HandleCompleted, h.State())
	})

	t.Run("it should be reusable after draining to zero", func(t *testing.T) {
		t.Parallel()

		tr := drain.NewTracker()
		tr.Register("first").Complete()
		tr.Wait()

		h := tr.Register("second")
		assert.Equal(t, 1, tr.Outstanding())
		h.Complete()
		tr.Wait()
	})

	t.Run("WaitTimeout should report a timeout while workers are still outstanding", func(t *testing.T) {
		t.Parallel()

		tr := drain.NewTracker()
		h := tr.Register("slow")

		assert.True(t, tr.WaitTimeout(50*time.Millisecond))

		h.Complete()
		assert.False(t, tr.WaitTimeout(50*time.Millisecond))
	})
}
