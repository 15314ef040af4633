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
	path := filepath.Join(t.TempDir(), "paperflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.Session.RoundBudget)
	assert.Equal(t, "memory", cfg.Transcript.Backend)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadWithoutFileFallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, Default().LLM.Model, cfg.LLM.Model)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/paperflow.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Session.RoundBudget)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
session:
  round_budget: 5
  extended_roles: true
  retry:
    max_retries: 1
    initial_delay: 100ms
llm:
  model: mixtral-8x7b
  timeout: 45s
transcript:
  backend: file
  dir: /tmp/transcripts
log:
  level: debug
`)
	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Session.RoundBudget)
	assert.True(t, cfg.Session.ExtendedRoles)
	assert.Equal(t, 1, cfg.Session.Retry.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.Session.Retry.InitialDelay)
	assert.Equal(t, "mixtral-8x7b", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "file", cfg.Transcript.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched fields keep their defaults.
	assert.Equal(t, Default().LLM.MaxTokens, cfg.LLM.MaxTokens)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "llm:\n  model: from-file\n")

	t.Setenv("PAPERFLOW_LLM_MODEL", "from-env")
	t.Setenv("PAPERFLOW_SESSION_ROUND_BUDGET", "7")
	t.Setenv("PAPERFLOW_SESSION_EXTENDED_ROLES", "true")
	t.Setenv("PAPERFLOW_LLM_TIMEOUT", "30s")
	t.Setenv("PAPERFLOW_TELEMETRY_ENABLED", "true")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.LLM.Model)
	assert.Equal(t, 7, cfg.Session.RoundBudget)
	assert.True(t, cfg.Session.ExtendedRoles)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoadCustomEnvPrefix(t *testing.T) {
	t.Setenv("PF_LLM_MODEL", "prefixed")
	cfg, err := NewLoader().WithEnvPrefix("PF").Load()
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.LLM.Model)
}

func TestLoadMalformedEnvValueIgnored(t *testing.T) {
	t.Setenv("PAPERFLOW_SESSION_ROUND_BUDGET", "lots")
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Session.RoundBudget)
}

func TestLoadInvalidYAMLFails(t *testing.T) {
	path := writeConfig(t, "session: [not a mapping")
	_, err := NewLoader().WithConfigPath(path).Load()
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero round budget", func(c *Config) { c.Session.RoundBudget = 0 }},
		{"negative retries", func(c *Config) { c.Session.Retry.MaxRetries = -1 }},
		{"zero max tokens", func(c *Config) { c.LLM.MaxTokens = 0 }},
		{"zero timeout", func(c *Config) { c.LLM.Timeout = 0 }},
		{"unknown backend", func(c *Config) { c.Transcript.Backend = "cassandra" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
