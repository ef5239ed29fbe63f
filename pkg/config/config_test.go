package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taghive/taghive/pkg/observability"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.OpsPort)
	assert.Equal(t, DefaultAPIKey, cfg.Auth.APIKey)
	assert.True(t, cfg.UsingDefaultAPIKey())
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TAGHIVE_PORT", "8181")
	t.Setenv("TAGHIVE_API_KEY", "prod-secret")
	t.Setenv("TAGHIVE_LOG_LEVEL", "debug")
	t.Setenv("TAGHIVE_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("TAGHIVE_SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "8181", cfg.Server.Port)
	assert.Equal(t, "prod-secret", cfg.Auth.APIKey)
	assert.False(t, cfg.UsingDefaultAPIKey())
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taghive.yaml")
	data := []byte(`
server:
  port: "8282"
  ops_port: "9292"
  read_timeout: 20s
auth:
  api_key: file-secret
observability:
  log_level: warn
  metrics_enabled: false
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "8282", cfg.Server.Port)
	assert.Equal(t, "9292", cfg.Server.OpsPort)
	assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "file-secret", cfg.Auth.APIKey)
	assert.Equal(t, observability.WarnLevel, cfg.Observability.LogLevel)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taghive.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  api_key: file-secret\n"), 0644))
	t.Setenv("TAGHIVE_API_KEY", "env-secret")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Auth.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("TAGHIVE_OPS_PORT", "8080") // collides with the API port

	_, err := Load("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be different")
}
