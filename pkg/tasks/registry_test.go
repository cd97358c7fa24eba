package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferryhq/ferry/pkg/types"
)

func task(id string, appID types.AppID, state types.TaskState) *types.Task {
	return &types.Task{ID: id, AppID: appID, State: state}
}

func TestAddAndAppTasks(t *testing.T) {
	r := NewRegistry()
	r.Add(task("a.1", "/a", types.TaskStateRunning))
	r.Add(task("a.2", "/a", types.TaskStateStaged))
	r.Add(task("b.1", "/b", types.TaskStateRunning))

	got := r.AppTasks("/a")
	assert.Len(t, got, 2)
	assert.Empty(t, r.AppTasks("/missing"))
	assert.Equal(t, 3, r.Count())
}

func TestAddUpsertsByID(t *testing.T) {
	r := NewRegistry()
	r.Add(task("a.1", "/a", types.TaskStateStaged))
	r.Add(task("a.1", "/a", types.TaskStateRunning))

	got := r.AppTasks("/a")
	require.Len(t, got, 1)
	assert.Equal(t, types.TaskStateRunning, got[0].State)
}

func TestSnapshotIsolation(t *testing.T) {
	r := NewRegistry()
	r.Add(task("a.1", "/a", types.TaskStateRunning))

	snap := r.AppTasks("/a")
	require.Len(t, snap, 1)

	// Mutating the snapshot must not leak into the registry
	snap[0].State = types.TaskStateFailed

	again := r.AppTasks("/a")
	require.Len(t, again, 1)
	assert.Equal(t, types.TaskStateRunning, again[0].State)
}

func TestGroupedByApp(t *testing.T) {
	r := NewRegistry()
	r.Add(task("a.1", "/a", types.TaskStateRunning))
	r.Add(task("b.1", "/b", types.TaskStateRunning))
	r.Add(task("b.2", "/b", types.TaskStateStaged))

	grouped := r.GroupedByApp()
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["/a"], 1)
	assert.Len(t, grouped["/b"], 2)
}

func TestStaleGroupingSurvivesReassociation(t *testing.T) {
	r := NewRegistry()

	// Task first reported under /orphan, later re-reported under /a
	// without removal: both groupings surface it.
	r.Add(task("t1", "/orphan", types.TaskStateRunning))
	r.Add(task("t1", "/a", types.TaskStateRunning))

	grouped := r.GroupedByApp()
	require.Len(t, grouped, 2)
	assert.Len(t, grouped["/orphan"], 1)
	assert.Len(t, grouped["/a"], 1)
}

func TestRemoveDeletesFromAllGroupings(t *testing.T) {
	r := NewRegistry()
	r.Add(task("t1", "/orphan", types.TaskStateRunning))
	r.Add(task("t1", "/a", types.TaskStateRunning))
	r.Add(task("t2", "/a", types.TaskStateRunning))

	r.Remove("t1")

	grouped := r.GroupedByApp()
	require.Len(t, grouped, 1)
	assert.Len(t, grouped["/a"], 1)
	assert.Equal(t, "t2", grouped["/a"][0].ID)
}

func TestRemoveApp(t *testing.T) {
	r := NewRegistry()
	r.Add(task("a.1", "/a", types.TaskStateRunning))
	r.Add(task("b.1", "/b", types.TaskStateRunning))

	r.RemoveApp("/a")

	assert.Empty(t, r.AppTasks("/a"))
	assert.Len(t, r.AppTasks("/b"), 1)
}
