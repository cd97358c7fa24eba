package driver

import (
	"sync"

	"github.com/ferryhq/ferry/pkg/log"
	"github.com/ferryhq/ferry/pkg/metrics"
	"github.com/ferryhq/ferry/pkg/types"
)

// ClusterDriver is the outbound channel to the remote cluster resource
// manager. Both calls are one-way dispatches: they return as soon as the
// command is handed off and never wait for the remote side. Delivery is
// at-least-once; replies arrive later through the status-update channel.
type ClusterDriver interface {
	// ReconcileTasks submits a batch of task status snapshots. An empty
	// batch requests implicit reconciliation: the remote side reports
	// every task it knows for this scheduler.
	ReconcileTasks(statuses []types.TaskStatus)

	// KillTask asks the remote side to kill one task
	KillTask(taskID string)
}

// Transport delivers commands to the remote cluster manager. The wire
// protocol lives behind these hooks; the dispatcher only orders and
// hands off commands.
type Transport struct {
	SendReconcile func(statuses []types.TaskStatus)
	SendKill      func(taskID string)
}

type commandKind int

const (
	cmdReconcile commandKind = iota
	cmdKill
)

type command struct {
	kind     commandKind
	statuses []types.TaskStatus
	taskID   string
}

// Dispatcher implements ClusterDriver as an asynchronous command queue.
// Commands are delivered to the transport in submission order by a single
// goroutine, so phase ordering within a reconciliation round is preserved.
type Dispatcher struct {
	transport Transport
	cmdCh     chan command
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewDispatcher creates a dispatcher with the given queue size
func NewDispatcher(transport Transport, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		transport: transport,
		cmdCh:     make(chan command, queueSize),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start begins the delivery loop
func (d *Dispatcher) Start() {
	go d.run()
}

// Stop stops the dispatcher. Commands already handed off may still be
// delivered; commands submitted after Stop are dropped.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
	<-d.done
}

// ReconcileTasks hands off one reconciliation command. The batch is copied;
// the caller may reuse the slice.
func (d *Dispatcher) ReconcileTasks(statuses []types.TaskStatus) {
	batch := make([]types.TaskStatus, len(statuses))
	copy(batch, statuses)

	select {
	case d.cmdCh <- command{kind: cmdReconcile, statuses: batch}:
		metrics.DriverCommandsTotal.WithLabelValues("reconcile").Inc()
	case <-d.stopCh:
	}
}

// KillTask hands off one kill command
func (d *Dispatcher) KillTask(taskID string) {
	select {
	case d.cmdCh <- command{kind: cmdKill, taskID: taskID}:
		metrics.DriverCommandsTotal.WithLabelValues("kill").Inc()
	case <-d.stopCh:
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	logger := log.WithComponent("driver")

	for {
		select {
		case cmd := <-d.cmdCh:
			d.deliver(cmd)
		case <-d.stopCh:
			// Drain what was already queued
			for {
				select {
				case cmd := <-d.cmdCh:
					d.deliver(cmd)
				default:
					logger.Debug().Msg("dispatcher stopped")
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(cmd command) {
	switch cmd.kind {
	case cmdReconcile:
		if d.transport.SendReconcile != nil {
			d.transport.SendReconcile(cmd.statuses)
		}
	case cmdKill:
		if d.transport.SendKill != nil {
			d.transport.SendKill(cmd.taskID)
		}
	}
}
