package syncer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowRespondReturnsPreviousState(t *testing.T) {
	w := NewWorkflow()
	token, err := w.Create("p1/g1", time.Minute, nil)
	require.NoError(t, err)

	prev, err := w.Respond(token, StateConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatePending, prev)

	// The loser of a duplicate respond observes the settled state.
	prev, err = w.Respond(token, StateRejected)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, prev)
	assert.Equal(t, StateConfirmed, token.State())
}

func TestWorkflowOnlyOneOpenPerKey(t *testing.T) {
	w := NewWorkflow()
	_, err := w.Create("p1/g1", time.Minute, nil)
	require.NoError(t, err)

	_, err = w.Create("p1/g1", time.Minute, nil)
	assert.ErrorIs(t, err, ErrInvalidState)

	// A different key is unaffected.
	_, err = w.Create("p1/g2", time.Minute, nil)
	assert.NoError(t, err)
}

func TestWorkflowExpiryFiresOnce(t *testing.T) {
	w := NewWorkflow()
	var fired atomic.Int32
	_, err := w.Create("p1/g1", 10*time.Millisecond, func() {
		fired.Add(1)
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())

	// The key is free for reuse after expiry.
	_, err = w.Create("p1/g1", time.Minute, nil)
	assert.NoError(t, err)
}

func TestWorkflowRespondBeatsTimer(t *testing.T) {
	w := NewWorkflow()
	var fired atomic.Int32
	token, err := w.Create("p1/g1", 20*time.Millisecond, func() {
		fired.Add(1)
	})
	require.NoError(t, err)

	prev, err := w.Respond(token, StateConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatePending, prev)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load(), "timer must not fire after a response settled the token")
}

func TestWorkflowConcurrentRespondExactlyOneWinner(t *testing.T) {
	for i := 0; i < 20; i++ {
		w := NewWorkflow()
		token, err := w.Create("p1/g1", time.Minute, nil)
		require.NoError(t, err)

		var wins atomic.Int32
		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				prev, err := w.Respond(token, StateConfirmed)
				if err == nil && prev == StatePending {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	}
}
