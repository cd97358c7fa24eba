package scheduler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ferryhq/ferry/pkg/driver"
	"github.com/ferryhq/ferry/pkg/events"
	"github.com/ferryhq/ferry/pkg/log"
	"github.com/ferryhq/ferry/pkg/metrics"
	"github.com/ferryhq/ferry/pkg/types"
)

// AppRegistry is the slice of the persisted app registry the coordinator
// uses: listing all known identifiers and expunging one record.
type AppRegistry interface {
	AllAppIDs(ctx context.Context) ([]types.AppID, error)
	ExpungeApp(ctx context.Context, id types.AppID) error
}

// TaskRegistry provides synchronous in-memory snapshots of known tasks.
// Neither call suspends; both return copies.
type TaskRegistry interface {
	AppTasks(id types.AppID) []*types.Task
	GroupedByApp() map[types.AppID][]*types.Task
}

// LaunchQueue receives one-way cleanup commands during stop
type LaunchQueue interface {
	Purge(id types.AppID)
	ResetDelay(app *types.App)
}

// HealthManager stops active health checks for an application
type HealthManager interface {
	StopChecksForApp(id types.AppID)
}

// EventSink receives lifecycle notifications
type EventSink interface {
	Publish(event *events.Event)
}

// Actions orchestrates application stop and task reconciliation against
// the cluster driver. It composes its collaborators and owns no timer;
// a periodic caller drives ReconcileTasks.
type Actions struct {
	apps   AppRegistry
	tasks  TaskRegistry
	queue  LaunchQueue
	health HealthManager
	bus    EventSink
	logger zerolog.Logger
}

// NewActions creates the coordinator
func NewActions(apps AppRegistry, tasks TaskRegistry, queue LaunchQueue, health HealthManager, bus EventSink) *Actions {
	return &Actions{
		apps:   apps,
		tasks:  tasks,
		queue:  queue,
		health: health,
		bus:    bus,
		logger: log.WithComponent("scheduler"),
	}
}

// StopApp stops an application: it purges pending launches, resets the
// app's launch backoff to its initial delay, stops health checks for the
// app's tasks, and expunges the persisted definition. The driver handle is
// accepted for call-signature symmetry with ReconcileTasks; stop issues no
// driver commands itself.
//
// Queue cleanup is issued before the expunge, so it happens even when the
// expunge fails; the error of the expunge is the error of the call. No
// retries here - a supervising caller retries the whole operation.
func (a *Actions) StopApp(ctx context.Context, _ driver.ClusterDriver, app *types.App) error {
	logger := a.logger.With().Str("app_id", app.ID.String()).Logger()
	logger.Info().Msg("stopping app")

	a.queue.Purge(app.ID)
	a.queue.ResetDelay(app)

	// Point-in-time view; tasks may change between read and use.
	snapshot := a.tasks.AppTasks(app.ID)

	a.health.StopChecksForApp(app.ID)

	expungeErr := a.apps.ExpungeApp(ctx, app.ID)
	if expungeErr != nil {
		logger.Error().Err(expungeErr).Msg("failed to expunge app")
		ev := events.New(events.EventAppExpungeFailed)
		ev.AppID = app.ID
		ev.Message = expungeErr.Error()
		a.bus.Publish(ev)
	}

	ev := events.New(events.EventAppStopped)
	ev.AppID = app.ID
	ev.Metadata = map[string]string{"tasks": strconv.Itoa(len(snapshot))}
	a.bus.Publish(ev)

	metrics.AppsStoppedTotal.Inc()

	if expungeErr != nil {
		return fmt.Errorf("failed to expunge app %s: %w", app.ID, expungeErr)
	}
	return nil
}

// ReconcileTasks runs one reconciliation round against the cluster driver.
//
// Phase 1 submits every task status the coordinator believes to be true,
// across all applications the registry currently lists, in a single
// explicit call (made even when the batch is empty). Phase 2 submits one
// implicit call with an empty list, asking the remote side for its full
// view. Tasks grouped under an application the registry no longer knows
// are orphans; each gets exactly one kill command per round.
//
// The call returns once all dispatches are issued. Driver replies arrive
// later through the status-update channel. Rounds are idempotent: the
// protocol self-heals on the next round if anything is lost.
func (a *Actions) ReconcileTasks(ctx context.Context, drv driver.ClusterDriver) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ReconciliationDuration)
	metrics.ReconciliationRoundsTotal.Inc()

	ids, err := a.apps.AllAppIDs(ctx)
	if err != nil {
		// No partial round: if the listing fails, no driver calls are made.
		return fmt.Errorf("failed to list app ids: %w", err)
	}

	a.bus.Publish(events.New(events.EventReconcileStarted))
	metrics.AppsTotal.Set(float64(len(ids)))

	known := make(map[types.AppID]struct{}, len(ids))
	claimed := make(map[string]struct{})
	var batch []types.TaskStatus
	for _, id := range ids {
		known[id] = struct{}{}
		for _, t := range a.tasks.AppTasks(id) {
			batch = append(batch, types.NewTaskStatus(t))
			claimed[t.ID] = struct{}{}
		}
	}

	// Phase 1: explicit reconciliation of everything we believe is true.
	drv.ReconcileTasks(batch)

	// Phase 2: implicit reconciliation, the remote side reports its full view.
	drv.ReconcileTasks(nil)

	kills := a.killOrphanedTasks(drv, known, claimed)

	metrics.ExplicitBatchSize.Set(float64(len(batch)))

	ev := events.New(events.EventReconcileCompleted)
	ev.Metadata = map[string]string{
		"batch_size": strconv.Itoa(len(batch)),
		"kills":      strconv.Itoa(kills),
	}
	a.bus.Publish(ev)

	a.logger.Debug().
		Int("apps", len(ids)).
		Int("batch_size", len(batch)).
		Int("kills", kills).
		Msg("reconciliation round dispatched")
	return nil
}

// killOrphanedTasks kills every task grouped under an application the
// registry no longer lists. Ownership is decided by registry membership,
// not by the grouping key: a task id claimed by any known application is
// never killed, and no task is killed twice in one round.
func (a *Actions) killOrphanedTasks(drv driver.ClusterDriver, known map[types.AppID]struct{}, claimed map[string]struct{}) int {
	grouped := a.tasks.GroupedByApp()

	killed := make(map[string]struct{})
	for appID, ts := range grouped {
		if _, ok := known[appID]; ok {
			continue
		}
		for _, t := range ts {
			if _, ok := claimed[t.ID]; ok {
				continue
			}
			if _, ok := killed[t.ID]; ok {
				continue
			}
			killed[t.ID] = struct{}{}

			a.logger.Warn().
				Str("task_id", t.ID).
				Str("app_id", appID.String()).
				Msg("killing orphaned task")
			drv.KillTask(t.ID)
			metrics.OrphanKillsTotal.Inc()

			ev := events.New(events.EventTaskKillRequested)
			ev.AppID = appID
			ev.TaskID = t.ID
			ev.Message = "orphaned task"
			a.bus.Publish(ev)
		}
	}
	return len(killed)
}
