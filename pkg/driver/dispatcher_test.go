package driver

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferryhq/ferry/pkg/types"
)

type recordingTransport struct {
	mu         sync.Mutex
	reconciles [][]types.TaskStatus
	kills      []string
	order      []string
}

func (r *recordingTransport) transport() Transport {
	return Transport{
		SendReconcile: func(statuses []types.TaskStatus) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.reconciles = append(r.reconciles, statuses)
			r.order = append(r.order, "reconcile")
		},
		SendKill: func(taskID string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.kills = append(r.kills, taskID)
			r.order = append(r.order, "kill")
		},
	}
}

func (r *recordingTransport) snapshot() (int, int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order := make([]string, len(r.order))
	copy(order, r.order)
	return len(r.reconciles), len(r.kills), order
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	rec := &recordingTransport{}
	d := NewDispatcher(rec.transport(), 16)
	d.Start()

	d.ReconcileTasks([]types.TaskStatus{{TaskID: "a.1", State: types.TaskStateRunning}})
	d.ReconcileTasks(nil)
	d.KillTask("orphan.1")

	d.Stop()

	reconciles, kills, order := rec.snapshot()
	assert.Equal(t, 2, reconciles)
	assert.Equal(t, 1, kills)
	assert.Equal(t, []string{"reconcile", "reconcile", "kill"}, order)
}

func TestDispatcherCopiesBatch(t *testing.T) {
	rec := &recordingTransport{}
	d := NewDispatcher(rec.transport(), 16)
	d.Start()

	batch := []types.TaskStatus{{TaskID: "a.1", State: types.TaskStateStaged}}
	d.ReconcileTasks(batch)
	batch[0].TaskID = "mutated"

	d.Stop()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.reconciles, 1)
	assert.Equal(t, "a.1", rec.reconciles[0][0].TaskID)
}

func TestDispatcherEmptyBatchDelivered(t *testing.T) {
	rec := &recordingTransport{}
	d := NewDispatcher(rec.transport(), 16)
	d.Start()

	d.ReconcileTasks(nil)
	d.Stop()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.reconciles, 1)
	assert.Empty(t, rec.reconciles[0])
}

func TestDispatcherStopDropsLateCommands(t *testing.T) {
	rec := &recordingTransport{}
	d := NewDispatcher(rec.transport(), 16)
	d.Start()
	d.Stop()

	// Must not block or panic after stop
	done := make(chan struct{})
	go func() {
		d.KillTask("late")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch after stop blocked")
	}

	_, kills, _ := rec.snapshot()
	assert.Equal(t, 0, kills)
}

func TestDispatcherNilTransportHooks(t *testing.T) {
	d := NewDispatcher(Transport{}, 4)
	d.Start()

	d.ReconcileTasks(nil)
	d.KillTask("t1")

	d.Stop() // must not panic
}
