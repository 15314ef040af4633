package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration with the precedence defaults -> YAML file
// -> environment variables.
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader creates a loader with no file and the PAPERFLOW env prefix.
func NewLoader() *Loader {
	return &Loader{envPrefix: "PAPERFLOW"}
}

// WithConfigPath sets the YAML file to load. The file is optional: a
// missing file falls back to defaults.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix overrides the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Load resolves the configuration and validates it.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", l.configPath, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", l.configPath, err)
			}
		}
	}

	l.applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides select fields from environment variables. Only the
// knobs that differ across deployments are exposed this way; everything
// else belongs in the YAML file.
func (l *Loader) applyEnv(cfg *Config) {
	l.envString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	l.envString("LLM_API_KEY", &cfg.LLM.APIKey)
	l.envString("LLM_MODEL", &cfg.LLM.Model)
	l.envInt("LLM_MAX_TOKENS", &cfg.LLM.MaxTokens)
	l.envDuration("LLM_TIMEOUT", &cfg.LLM.Timeout)
	l.envInt("SESSION_ROUND_BUDGET", &cfg.Session.RoundBudget)
	l.envBool("SESSION_EXTENDED_ROLES", &cfg.Session.ExtendedRoles)
	l.envInt("SESSION_RETRY_MAX_RETRIES", &cfg.Session.Retry.MaxRetries)
	l.envString("TRANSCRIPT_BACKEND", &cfg.Transcript.Backend)
	l.envString("TRANSCRIPT_DIR", &cfg.Transcript.Dir)
	l.envString("TRANSCRIPT_REDIS_ADDR", &cfg.Transcript.RedisAddr)
	l.envString("LOG_LEVEL", &cfg.Log.Level)
	l.envString("LOG_FORMAT", &cfg.Log.Format)
	l.envBool("TELEMETRY_ENABLED", &cfg.Telemetry.Enabled)
	l.envString("TELEMETRY_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint)
}

func (l *Loader) lookup(key string) (string, bool) {
	return os.LookupEnv(l.envPrefix + "_" + key)
}

func (l *Loader) envString(key string, dst *string) {
	if v, ok := l.lookup(key); ok {
		*dst = v
	}
}

func (l *Loader) envInt(key string, dst *int) {
	if v, ok := l.lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (l *Loader) envBool(key string, dst *bool) {
	if v, ok := l.lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func (l *Loader) envDuration(key string, dst *time.Duration) {
	if v, ok := l.lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
