package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/dashboard/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
backend:
  base_url: http://backend:8080
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8070, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "http://backend:8080", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "nc_session", cfg.Session.CookieName)
	assert.Equal(t, "/dashboard", cfg.Session.CookiePath)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.PollInterval)
	assert.Equal(t, 20, cfg.Dashboard.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.AvailabilityCacheTTL)
}

func TestLoadReadsYAMLValues(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
debug: true
server:
  host: 127.0.0.1
  port: 9090
backend:
  base_url: http://backend:8080
  timeout: 5s
dashboard:
  poll_interval: 10s
  page_size: 50
session:
  cookie_name: custom_session
  cookie_secure: true
`))
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Dashboard.PollInterval)
	assert.Equal(t, 50, cfg.Dashboard.PageSize)
	assert.Equal(t, "custom_session", cfg.Session.CookieName)
	assert.True(t, cfg.Session.CookieSecure)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://other-backend:9000")
	t.Setenv("DASHBOARD_POLL_INTERVAL", "30s")
	t.Setenv("SERVER_PORT", "8081")

	cfg, err := config.Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "http://other-backend:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.PollInterval)
	assert.Equal(t, 8081, cfg.Server.Port)
}

func TestLoadRejectsMissingBackendURL(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
server:
  port: 8070
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_url")
}

func TestLoadRejectsPollIntervalBelowFloor(t *testing.T) {
	_, err := config.Load(writeConfig(t, minimalConfig+`
dashboard:
  poll_interval: 100ms
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll_interval")
}
