package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Reconciliation metrics
	ReconciliationRoundsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ferry_reconciliation_rounds_total",
			Help: "Total number of reconciliation rounds started",
		},
	)

	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ferry_reconciliation_duration_seconds",
			Help:    "Time taken to dispatch one reconciliation round in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ExplicitBatchSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ferry_reconciliation_explicit_batch_size",
			Help: "Number of task status snapshots in the last explicit reconciliation batch",
		},
	)

	OrphanKillsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ferry_orphan_kills_total",
			Help: "Total number of kill commands dispatched for orphaned tasks",
		},
	)

	// App lifecycle metrics
	AppsStoppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ferry_apps_stopped_total",
			Help: "Total number of applications stopped",
		},
	)

	AppsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ferry_apps_total",
			Help: "Number of applications in the app registry",
		},
	)

	TasksTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ferry_tasks_tracked",
			Help: "Number of task entries in the local task registry",
		},
	)

	// Driver metrics
	DriverCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferry_driver_commands_total",
			Help: "Total number of commands handed to the cluster driver by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ReconciliationRoundsTotal)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ExplicitBatchSize)
	prometheus.MustRegister(OrphanKillsTotal)
	prometheus.MustRegister(AppsStoppedTotal)
	prometheus.MustRegister(AppsTotal)
	prometheus.MustRegister(TasksTracked)
	prometheus.MustRegister(DriverCommandsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
