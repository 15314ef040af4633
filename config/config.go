// Package config provides unified configuration loading: defaults,
// overridden by a YAML file, overridden by environment variables.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("paperflow.yaml").
//	    WithEnvPrefix("PAPERFLOW").
//	    Load()
package config

import (
	"fmt"
	"time"
)

// Config is the complete paperflow configuration.
type Config struct {
	// Session controls the coordination protocol.
	Session SessionConfig `yaml:"session"`
	// LLM configures the inference provider boundary.
	LLM LLMConfig `yaml:"llm"`
	// Transcript configures session transcript persistence.
	Transcript TranscriptConfig `yaml:"transcript"`
	// Log configures logging.
	Log LogConfig `yaml:"log"`
	// Telemetry configures the OTel SDK.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SessionConfig controls the multi-round writing protocol.
type SessionConfig struct {
	// RoundBudget caps coordination rounds per session.
	RoundBudget int `yaml:"round_budget"`
	// ExtendedRoles enables the Literature and Conclusion sections in
	// addition to the Methods/Results/Discussion core.
	ExtendedRoles bool `yaml:"extended_roles"`
	// Retry is the inference retry policy applied by the coordinator.
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig is the inference retry policy.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	Jitter       bool          `yaml:"jitter"`
}

// LLMConfig configures the inference provider.
type LLMConfig struct {
	// BaseURL of an OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url"`
	// APIKey sent as a bearer token when non-empty.
	APIKey string `yaml:"api_key"`
	// Model is the default model name.
	Model string `yaml:"model"`
	// MaxTokens per completion.
	MaxTokens int `yaml:"max_tokens"`
	// Temperature for sampling.
	Temperature float32 `yaml:"temperature"`
	// Timeout is the per-call inference deadline.
	Timeout time.Duration `yaml:"timeout"`
	// RateLimitRPS caps provider requests per second; 0 disables.
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
	// RateLimitBurst is the limiter burst size.
	RateLimitBurst int `yaml:"rate_limit_burst"`
}

// TranscriptConfig configures transcript persistence.
type TranscriptConfig struct {
	// Backend: memory, file, or redis.
	Backend string `yaml:"backend"`
	// Dir is the directory for the file backend.
	Dir string `yaml:"dir"`
	// RedisAddr and RedisDB configure the redis backend.
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format: json or console.
	Format string `yaml:"format"`
}

// TelemetryConfig configures the OTel SDK.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			RoundBudget: 3,
			Retry: RetryConfig{
				MaxRetries:   3,
				InitialDelay: 1 * time.Second,
				MaxDelay:     30 * time.Second,
				Multiplier:   2.0,
				Jitter:       true,
			},
		},
		LLM: LLMConfig{
			BaseURL:        "http://localhost:8080/v1",
			Model:          "llama-3.1-8b-instruct",
			MaxTokens:      2048,
			Temperature:    0.7,
			Timeout:        90 * time.Second,
			RateLimitRPS:   0,
			RateLimitBurst: 1,
		},
		Transcript: TranscriptConfig{
			Backend: "memory",
			Dir:     "transcripts",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "paperflow",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks invariants that would otherwise surface deep inside a
// session.
func (c *Config) Validate() error {
	if c.Session.RoundBudget < 1 {
		return fmt.Errorf("session.round_budget must be >= 1, got %d", c.Session.RoundBudget)
	}
	if c.Session.Retry.MaxRetries < 0 {
		return fmt.Errorf("session.retry.max_retries must be >= 0, got %d", c.Session.Retry.MaxRetries)
	}
	if c.LLM.MaxTokens < 1 {
		return fmt.Errorf("llm.max_tokens must be >= 1, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	switch c.Transcript.Backend {
	case "", "memory", "file", "redis":
	default:
		return fmt.Errorf("transcript.backend must be memory, file, or redis, got %q", c.Transcript.Backend)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	return nil
}
