package controlloop

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ferryhq/ferry/pkg/driver"
	"github.com/ferryhq/ferry/pkg/log"
	"github.com/ferryhq/ferry/pkg/metrics"
	"github.com/ferryhq/ferry/pkg/scheduler"
	"github.com/ferryhq/ferry/pkg/tasks"
	"github.com/ferryhq/ferry/pkg/types"
)

// DefaultInterval is the reconciliation cadence when none is configured
const DefaultInterval = 10 * time.Minute

// Loop drives the coordinator: it invokes a reconciliation round on a
// fixed interval and applies incoming task status updates to the task
// registry. The coordinator itself owns no timer; this is its periodic
// caller.
type Loop struct {
	actions  *scheduler.Actions
	driver   driver.ClusterDriver
	registry *tasks.Registry
	interval time.Duration
	updateCh chan types.Task
	stopCh   chan struct{}
	done     chan struct{}
	logger   zerolog.Logger
}

// NewLoop creates a control loop
func NewLoop(actions *scheduler.Actions, drv driver.ClusterDriver, registry *tasks.Registry, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		actions:  actions,
		driver:   drv,
		registry: registry,
		interval: interval,
		updateCh: make(chan types.Task, 256),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		logger:   log.WithComponent("controlloop"),
	}
}

// Start begins the loop
func (l *Loop) Start() {
	go l.run()
}

// Stop stops the loop
func (l *Loop) Stop() {
	close(l.stopCh)
	<-l.done
}

// Updates returns the channel task status updates are submitted on
func (l *Loop) Updates() chan<- types.Task {
	return l.updateCh
}

// RunOnce triggers a single reconciliation round immediately
func (l *Loop) RunOnce(ctx context.Context) error {
	return l.actions.ReconcileTasks(ctx, l.driver)
}

func (l *Loop) run() {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := l.actions.ReconcileTasks(context.Background(), l.driver); err != nil {
				// Scoped to this round; the next tick retries the whole round
				l.logger.Error().Err(err).Msg("reconciliation round failed")
			}
		case update := <-l.updateCh:
			l.apply(update)
		case <-l.stopCh:
			return
		}
	}
}

// apply folds one status update into the task registry. Terminal states
// drop the task; everything else upserts it under its reported app.
func (l *Loop) apply(update types.Task) {
	if update.State.Terminal() {
		l.registry.Remove(update.ID)
	} else {
		l.registry.Add(&update)
	}
	metrics.TasksTracked.Set(float64(l.registry.Count()))
}
