package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ferryhq/ferry/pkg/controlloop"
	"github.com/ferryhq/ferry/pkg/driver"
	"github.com/ferryhq/ferry/pkg/events"
	"github.com/ferryhq/ferry/pkg/health"
	"github.com/ferryhq/ferry/pkg/log"
	"github.com/ferryhq/ferry/pkg/metrics"
	"github.com/ferryhq/ferry/pkg/queue"
	"github.com/ferryhq/ferry/pkg/scheduler"
	"github.com/ferryhq/ferry/pkg/store"
	"github.com/ferryhq/ferry/pkg/tasks"
	"github.com/ferryhq/ferry/pkg/types"
)

// duration lets YAML carry values like "10m" or "90s"
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = duration(parsed)
	return nil
}

// Config holds the daemon configuration, loaded from YAML with flag overrides
type Config struct {
	DataDir           string   `yaml:"dataDir"`
	ReconcileInterval duration `yaml:"reconcileInterval"`
	MetricsAddr       string   `yaml:"metricsAddr"`
	LogLevel          string   `yaml:"logLevel"`
	JSONLogs          bool     `yaml:"jsonLogs"`
	DriverQueueSize   int      `yaml:"driverQueueSize"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		DataDir:           "/var/lib/ferry",
		ReconcileInterval: duration(controlloop.DefaultInterval),
		MetricsAddr:       ":9309",
		LogLevel:          "info",
		DriverQueueSize:   256,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Ferry coordinator daemon",
	Long: `Run the Ferry coordinator daemon.

The daemon reconciles task state with the cluster resource manager on a
fixed interval and serves Prometheus metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("config", "c", "", "Path to YAML config file")
	serveCmd.Flags().String("data-dir", "", "Data directory (overrides config)")
	serveCmd.Flags().Duration("interval", 0, "Reconciliation interval (overrides config)")
	serveCmd.Flags().String("metrics-addr", "", "Metrics listen address (overrides config)")
	serveCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	serveCmd.Flags().Bool("json-logs", false, "Emit JSON logs")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetDuration("interval"); v > 0 {
		cfg.ReconcileInterval = duration(v)
	}
	if v, _ := cmd.Flags().GetString("metrics-addr"); v != "" {
		cfg.MetricsAddr = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if cmd.Flags().Changed("json-logs") {
		cfg.JSONLogs, _ = cmd.Flags().GetBool("json-logs")
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.JSONLogs,
	})
	logger := log.WithComponent("ferryd")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	appStore, err := store.NewBoltStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open app store: %w", err)
	}
	defer appStore.Close()

	registry := tasks.NewRegistry()
	launcher := queue.NewLauncher()
	healthMgr := health.NewManager()

	broker := events.NewBroker()
	broker.Start()

	dispatcher := driver.NewDispatcher(loggingTransport(), cfg.DriverQueueSize)
	dispatcher.Start()

	actions := scheduler.NewActions(appStore, registry, launcher, healthMgr, broker)
	loop := controlloop.NewLoop(actions, dispatcher, registry, time.Duration(cfg.ReconcileInterval))
	loop.Start()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	logger.Info().
		Str("data_dir", cfg.DataDir).
		Dur("interval", time.Duration(cfg.ReconcileInterval)).
		Str("metrics_addr", cfg.MetricsAddr).
		Msg("ferry coordinator started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")

	_ = metricsSrv.Close()
	loop.Stop()
	dispatcher.Stop()
	healthMgr.Stop()
	broker.Stop()
	return nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// loggingTransport stands in for the site-specific driver binding. The
// wire protocol to the cluster resource manager is deployment-specific;
// commands are logged at the boundary where that binding plugs in.
func loggingTransport() driver.Transport {
	logger := log.WithComponent("transport")
	return driver.Transport{
		SendReconcile: func(statuses []types.TaskStatus) {
			logger.Debug().Int("batch_size", len(statuses)).Msg("reconcile dispatched")
		},
		SendKill: func(taskID string) {
			logger.Debug().Str("task_id", taskID).Msg("kill dispatched")
		},
	}
}
