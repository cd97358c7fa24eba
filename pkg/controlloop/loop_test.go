package controlloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferryhq/ferry/pkg/events"
	"github.com/ferryhq/ferry/pkg/scheduler"
	"github.com/ferryhq/ferry/pkg/tasks"
	"github.com/ferryhq/ferry/pkg/types"
)

type stubAppRegistry struct {
	ids []types.AppID
}

func (s *stubAppRegistry) AllAppIDs(ctx context.Context) ([]types.AppID, error) {
	return s.ids, nil
}

func (s *stubAppRegistry) ExpungeApp(ctx context.Context, id types.AppID) error {
	return nil
}

type stubQueue struct{}

func (stubQueue) Purge(id types.AppID)      {}
func (stubQueue) ResetDelay(app *types.App) {}

type stubHealth struct{}

func (stubHealth) StopChecksForApp(id types.AppID) {}

type stubBus struct{}

func (stubBus) Publish(event *events.Event) {}

// countingDriver is a thread-safe recording driver
type countingDriver struct {
	mu         sync.Mutex
	reconciles [][]types.TaskStatus
	kills      []string
}

func (d *countingDriver) ReconcileTasks(statuses []types.TaskStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	batch := make([]types.TaskStatus, len(statuses))
	copy(batch, statuses)
	d.reconciles = append(d.reconciles, batch)
}

func (d *countingDriver) KillTask(taskID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kills = append(d.kills, taskID)
}

func (d *countingDriver) counts() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.reconciles), len(d.kills)
}

func newTestLoop(interval time.Duration, ids ...types.AppID) (*Loop, *tasks.Registry, *countingDriver) {
	registry := tasks.NewRegistry()
	drv := &countingDriver{}
	actions := scheduler.NewActions(&stubAppRegistry{ids: ids}, registry, stubQueue{}, stubHealth{}, stubBus{})
	return NewLoop(actions, drv, registry, interval), registry, drv
}

func TestLoopAppliesStatusUpdates(t *testing.T) {
	loop, registry, _ := newTestLoop(time.Hour)
	loop.Start()
	defer loop.Stop()

	loop.Updates() <- types.Task{ID: "a.1", AppID: "/a", State: types.TaskStateRunning}

	assert.Eventually(t, func() bool {
		return len(registry.AppTasks("/a")) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestLoopRemovesTerminalTasks(t *testing.T) {
	loop, registry, _ := newTestLoop(time.Hour)
	loop.Start()
	defer loop.Stop()

	loop.Updates() <- types.Task{ID: "a.1", AppID: "/a", State: types.TaskStateRunning}
	loop.Updates() <- types.Task{ID: "a.1", AppID: "/a", State: types.TaskStateFinished}

	assert.Eventually(t, func() bool {
		return registry.Count() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestLoopRunsPeriodicRounds(t *testing.T) {
	loop, _, drv := newTestLoop(10 * time.Millisecond)
	loop.Start()
	defer loop.Stop()

	// Each round makes two reconciliation calls
	assert.Eventually(t, func() bool {
		reconciles, _ := drv.counts()
		return reconciles >= 4
	}, time.Second, 5*time.Millisecond)
}

func TestRunOnce(t *testing.T) {
	loop, registry, drv := newTestLoop(time.Hour, "/myapp")
	registry.Add(&types.Task{ID: "myapp.1", AppID: "/myapp", State: types.TaskStateRunning})
	registry.Add(&types.Task{ID: "orphan.1", AppID: "/orphan", State: types.TaskStateRunning})

	require.NoError(t, loop.RunOnce(context.Background()))

	reconciles, kills := drv.counts()
	assert.Equal(t, 2, reconciles)
	assert.Equal(t, 1, kills)
}

func TestLoopStop(t *testing.T) {
	loop, _, _ := newTestLoop(10 * time.Millisecond)
	loop.Start()

	done := make(chan struct{})
	go func() {
		loop.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestDefaultInterval(t *testing.T) {
	loop, _, _ := newTestLoop(0)
	assert.Equal(t, DefaultInterval, loop.interval)
}
