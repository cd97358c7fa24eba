package health

import (
	"context"
	"sync"
	"time"

	"github.com/ferryhq/ferry/pkg/log"
	"github.com/ferryhq/ferry/pkg/types"
)

// monitor is one running health check loop for a task
type monitor struct {
	taskID  string
	checker Checker
	config  Config
	status  *Status
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// Manager tracks active health checks per application and task. Stopping
// an application tears down every monitor registered under it; the call is
// fire-and-forget from the coordinator's perspective.
type Manager struct {
	mu       sync.Mutex
	monitors map[types.AppID]map[string]*monitor
}

// NewManager creates an empty health check manager
func NewManager() *Manager {
	return &Manager{
		monitors: make(map[types.AppID]map[string]*monitor),
	}
}

// Watch starts a health check loop for the task. A second Watch for the
// same task replaces the previous monitor.
func (m *Manager) Watch(task *types.Task, checker Checker, cfg Config) {
	if cfg.Interval <= 0 {
		cfg = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	mon := &monitor{
		taskID:  task.ID,
		checker: checker,
		config:  cfg,
		status:  NewStatus(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	m.mu.Lock()
	group, ok := m.monitors[task.AppID]
	if !ok {
		group = make(map[string]*monitor)
		m.monitors[task.AppID] = group
	}
	if prev, ok := group[task.ID]; ok {
		prev.stop()
	}
	group[task.ID] = mon
	m.mu.Unlock()

	go mon.run(ctx, task.AppID)
}

// StopChecksForApp stops and removes every monitor for the application
func (m *Manager) StopChecksForApp(id types.AppID) {
	m.mu.Lock()
	group := m.monitors[id]
	delete(m.monitors, id)
	m.mu.Unlock()

	for _, mon := range group {
		mon.stop()
	}
	if len(group) > 0 {
		log.WithAppID(id).Debug().Int("checks", len(group)).Msg("stopped health checks")
	}
}

// StopChecksForTask stops the monitor for a single task
func (m *Manager) StopChecksForTask(id types.AppID, taskID string) {
	m.mu.Lock()
	var mon *monitor
	if group, ok := m.monitors[id]; ok {
		mon = group[taskID]
		delete(group, taskID)
		if len(group) == 0 {
			delete(m.monitors, id)
		}
	}
	m.mu.Unlock()

	if mon != nil {
		mon.stop()
	}
}

// Stop stops all monitors
func (m *Manager) Stop() {
	m.mu.Lock()
	all := m.monitors
	m.monitors = make(map[types.AppID]map[string]*monitor)
	m.mu.Unlock()

	for _, group := range all {
		for _, mon := range group {
			mon.stop()
		}
	}
}

// ActiveChecks returns the number of monitors registered for the application
func (m *Manager) ActiveChecks(id types.AppID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.monitors[id])
}

// TaskStatus returns a copy of the task's current health status
func (m *Manager) TaskStatus(id types.AppID, taskID string) (Status, bool) {
	m.mu.Lock()
	var mon *monitor
	if group, ok := m.monitors[id]; ok {
		mon = group[taskID]
	}
	m.mu.Unlock()

	if mon == nil {
		return Status{}, false
	}
	mon.mu.Lock()
	defer mon.mu.Unlock()
	return *mon.status, true
}

func (mon *monitor) run(ctx context.Context, appID types.AppID) {
	defer close(mon.done)
	logger := log.WithAppID(appID)

	ticker := time.NewTicker(mon.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mon.mu.Lock()
			inStart := mon.status.InStartPeriod(mon.config)
			mon.mu.Unlock()
			if inStart {
				continue
			}

			checkCtx, cancel := context.WithTimeout(ctx, mon.config.Timeout)
			result := mon.checker.Check(checkCtx)
			cancel()

			mon.mu.Lock()
			mon.status.Update(result, mon.config)
			healthy := mon.status.Healthy
			mon.mu.Unlock()

			if !healthy {
				logger.Warn().
					Str("task_id", mon.taskID).
					Str("reason", result.Message).
					Msg("task unhealthy")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (mon *monitor) stop() {
	mon.cancel()
	<-mon.done
}
