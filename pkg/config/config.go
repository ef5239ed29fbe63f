package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taghive/taghive/pkg/observability"
)

// DefaultAPIKey is the well-known demo placeholder. Any non-demo deployment
// must override it via TAGHIVE_API_KEY or the config file.
const DefaultAPIKey = "taghive-dev-key"

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	CORSOrigins     []string

	// Ops server (health probes + metrics, separate port)
	OpsPort string
}

// AuthConfig holds the access gate settings.
type AuthConfig struct {
	APIKey string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// Load builds configuration from defaults, an optional YAML file, and
// environment variables, in that order (env always wins).
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20, // 1MB
			CORSOrigins:     []string{"*"},
			OpsPort:         "9090",
		},
		Auth: AuthConfig{
			APIKey: DefaultAPIKey,
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.InfoLevel,
			MetricsEnabled: true,
		},
	}
}

// fileConfig mirrors Config with YAML-friendly field types.
type fileConfig struct {
	Server struct {
		Host            string   `yaml:"host"`
		Port            string   `yaml:"port"`
		OpsPort         string   `yaml:"ops_port"`
		ReadTimeout     string   `yaml:"read_timeout"`
		WriteTimeout    string   `yaml:"write_timeout"`
		IdleTimeout     string   `yaml:"idle_timeout"`
		ShutdownTimeout string   `yaml:"shutdown_timeout"`
		MaxBodyBytes    int64    `yaml:"max_body_bytes"`
		CORSOrigins     []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Auth struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"auth"`
	Observability struct {
		LogLevel       string `yaml:"log_level"`
		MetricsEnabled *bool  `yaml:"metrics_enabled"`
	} `yaml:"observability"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	setString(&cfg.Server.Host, fc.Server.Host)
	setString(&cfg.Server.Port, fc.Server.Port)
	setString(&cfg.Server.OpsPort, fc.Server.OpsPort)
	setDuration(&cfg.Server.ReadTimeout, fc.Server.ReadTimeout)
	setDuration(&cfg.Server.WriteTimeout, fc.Server.WriteTimeout)
	setDuration(&cfg.Server.IdleTimeout, fc.Server.IdleTimeout)
	setDuration(&cfg.Server.ShutdownTimeout, fc.Server.ShutdownTimeout)
	if fc.Server.MaxBodyBytes > 0 {
		cfg.Server.MaxBodyBytes = fc.Server.MaxBodyBytes
	}
	if fc.Server.CORSOrigins != nil {
		cfg.Server.CORSOrigins = fc.Server.CORSOrigins
	}
	setString(&cfg.Auth.APIKey, fc.Auth.APIKey)
	if fc.Observability.LogLevel != "" {
		cfg.Observability.LogLevel = observability.ParseLevel(fc.Observability.LogLevel)
	}
	if fc.Observability.MetricsEnabled != nil {
		cfg.Observability.MetricsEnabled = *fc.Observability.MetricsEnabled
	}

	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, os.Getenv("TAGHIVE_HOST"))
	setString(&cfg.Server.Port, os.Getenv("TAGHIVE_PORT"))
	setString(&cfg.Server.OpsPort, os.Getenv("TAGHIVE_OPS_PORT"))
	setDuration(&cfg.Server.ReadTimeout, os.Getenv("TAGHIVE_READ_TIMEOUT"))
	setDuration(&cfg.Server.WriteTimeout, os.Getenv("TAGHIVE_WRITE_TIMEOUT"))
	setDuration(&cfg.Server.IdleTimeout, os.Getenv("TAGHIVE_IDLE_TIMEOUT"))
	setDuration(&cfg.Server.ShutdownTimeout, os.Getenv("TAGHIVE_SHUTDOWN_TIMEOUT"))
	if v := os.Getenv("TAGHIVE_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Server.MaxBodyBytes = n
		}
	}
	if v := os.Getenv("TAGHIVE_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitAndTrim(v)
	}
	setString(&cfg.Auth.APIKey, os.Getenv("TAGHIVE_API_KEY"))
	if v := os.Getenv("TAGHIVE_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = observability.ParseLevel(v)
	}
	if v := os.Getenv("TAGHIVE_METRICS_ENABLED"); v != "" {
		cfg.Observability.MetricsEnabled = strings.ToLower(v) == "true" || v == "1"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.OpsPort == "" {
		return fmt.Errorf("ops port is required")
	}
	if c.Server.Port == c.Server.OpsPort {
		return fmt.Errorf("server port and ops port must be different")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("api key must not be empty")
	}
	return nil
}

// UsingDefaultAPIKey reports whether the demo placeholder key is in effect.
func (c *Config) UsingDefaultAPIKey() bool {
	return c.Auth.APIKey == DefaultAPIKey
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) {
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
	}
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
