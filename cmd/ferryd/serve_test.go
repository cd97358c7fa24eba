package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ferry", cfg.DataDir)
	assert.Equal(t, ":9309", cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ferry.yaml")
	content := `
dataDir: /tmp/ferry-test
reconcileInterval: 90s
metricsAddr: ":9999"
logLevel: debug
jsonLogs: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ferry-test", cfg.DataDir)
	assert.Equal(t, 90*time.Second, time.Duration(cfg.ReconcileInterval))
	assert.Equal(t, ":9999", cfg.MetricsAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.JSONLogs)
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ferry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reconcileInterval: soon\n"), 0644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig("/nonexistent/ferry.yaml")
	assert.Error(t, err)
}
