package tasks

import (
	"sync"

	"github.com/ferryhq/ferry/pkg/types"
)

// Registry holds the locally known tasks, grouped by the application they
// were last reported under. It is fed by placement and by the driver's
// status-update channel; the coordinator only reads snapshots from it.
//
// Reads are synchronous in-memory snapshots and never suspend. Returned
// tasks are copies, so a snapshot cannot change underneath a reconciliation
// round.
type Registry struct {
	mu sync.RWMutex

	// byApp maps grouping key -> task id -> task. A task that is
	// re-reported under a new application id without an intervening
	// Remove stays visible under the old grouping key too; reconciliation
	// treats grouping keys as hints, not as ownership.
	byApp map[types.AppID]map[string]*types.Task
}

// NewRegistry creates an empty task registry
func NewRegistry() *Registry {
	return &Registry{
		byApp: make(map[types.AppID]map[string]*types.Task),
	}
}

// Add records a task under its current application id (upsert)
func (r *Registry) Add(t *types.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.byApp[t.AppID]
	if !ok {
		group = make(map[string]*types.Task)
		r.byApp[t.AppID] = group
	}
	c := *t
	group[t.ID] = &c
}

// Remove deletes a task from every grouping it appears under
func (r *Registry) Remove(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for appID, group := range r.byApp {
		delete(group, taskID)
		if len(group) == 0 {
			delete(r.byApp, appID)
		}
	}
}

// RemoveApp drops a whole grouping
func (r *Registry) RemoveApp(id types.AppID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byApp, id)
}

// AppTasks returns a point-in-time copy of the tasks known for one application
func (r *Registry) AppTasks(id types.AppID) []*types.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group := r.byApp[id]
	out := make([]*types.Task, 0, len(group))
	for _, t := range group {
		c := *t
		out = append(out, &c)
	}
	return out
}

// GroupedByApp returns a point-in-time copy of all known tasks keyed by
// their grouping application id
func (r *Registry) GroupedByApp() map[types.AppID][]*types.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[types.AppID][]*types.Task, len(r.byApp))
	for appID, group := range r.byApp {
		ts := make([]*types.Task, 0, len(group))
		for _, t := range group {
			c := *t
			ts = append(ts, &c)
		}
		out[appID] = ts
	}
	return out
}

// Count returns the number of distinct task entries across all groupings
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, group := range r.byApp {
		n += len(group)
	}
	return n
}
