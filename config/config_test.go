package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5000, cfg.Import.MaxRows)
	assert.Equal(t, int64(10<<20), cfg.Import.MaxUploadBytes)
	assert.Equal(t, 5*time.Minute, cfg.Import.LockTTL)
	assert.Equal(t, 30, cfg.Import.RateLimit)
	assert.Equal(t, time.Minute, cfg.Import.RateWindow)
	assert.Equal(t, "5 0 1 * *", cfg.Scheduler.Spec)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("IMPORT_MAX_ROWS", "10")
	t.Setenv("IMPORT_LOCK_TTL", "30s")
	t.Setenv("LOG_SQL", "true")
	t.Setenv("BUDGET_SCHEDULER_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Import.MaxRows)
	assert.Equal(t, 30*time.Second, cfg.Import.LockTTL)
	assert.True(t, cfg.Database.LogSQL)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("IMPORT_MAX_ROWS", "lots")
	t.Setenv("IMPORT_RATE_WINDOW", "soon")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 5000, cfg.Import.MaxRows)
	assert.Equal(t, time.Minute, cfg.Import.RateWindow)
	assert.True(t, cfg.Metrics.Enabled)
}
