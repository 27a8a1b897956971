package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STATE_BACKEND", "")
	t.Setenv("API_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, BackendBolt, cfg.State.Backend)
	assert.Equal(t, 10, cfg.Catalog.PageSize)
	assert.Equal(t, 1000, cfg.Report.ScanPageSize)
	assert.Equal(t, 8*time.Second, cfg.Report.ConfirmTTL)
	assert.Equal(t, 0.6, cfg.Breaker.FailureRatio)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://inventory.example.com/api/")
	t.Setenv("STATE_BACKEND", "Redis")
	t.Setenv("API_TIMEOUT", "3")
	t.Setenv("REPORT_CONFIRM_TTL", "250ms")
	t.Setenv("CATALOG_PAGE_SIZE", "25")
	t.Setenv("BREAKER_FAILURE_RATIO", "0.5")
	t.Setenv("REDIS_SESSION_TTL", "24h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://inventory.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, BackendRedis, cfg.State.Backend)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Report.ConfirmTTL)
	assert.Equal(t, 25, cfg.Catalog.PageSize)
	assert.Equal(t, 0.5, cfg.Breaker.FailureRatio)
	assert.Equal(t, 24*time.Hour, cfg.Redis.SessionTTL)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("STATE_BACKEND", "sqlite")
	_, err := Load()
	assert.ErrorContains(t, err, "STATE_BACKEND")

	t.Setenv("STATE_BACKEND", "bolt")
	t.Setenv("CATALOG_PAGE_SIZE", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "CATALOG_PAGE_SIZE")
}

func TestGetDuration_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Minute, getDuration("SOME_DURATION", time.Minute))
}
