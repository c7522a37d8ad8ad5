package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 5*time.Second, cfg.Simulator.Interval)
	assert.Equal(t, 5.0, cfg.Simulator.FillJitter)
	assert.Equal(t, 0.5, cfg.Simulator.TempJitter)
	assert.Equal(t, 20.0, cfg.Simulator.LowThreshold)
	assert.Equal(t, 5.0, cfg.Simulator.HysteresisBand)
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
}

func TestLoadReadsExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
  rate_limit_per_sec: 50
storage:
  backend: relational
  seed_samples: true
database:
  driver: postgres
  dsn: "host=db user=tanks dbname=tanks"
simulator:
  enabled: true
  interval_seconds: 2
  low_threshold: 30
worker_pool:
  size: 4
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 50.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, "relational", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.SeedSamples)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Simulator.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Simulator.Interval)
	assert.Equal(t, 30.0, cfg.Simulator.LowThreshold)
	assert.Equal(t, 4, cfg.WorkerPool.Size)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [not a map"))
	assert.Error(t, err)
}
