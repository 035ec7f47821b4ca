package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. BETMIND_APP_LOG_LEVEL.
const EnvPrefix = "BETMIND"

// DefaultPath is used when no config path is given.
const DefaultPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return unmarshal(v)
}

// LoadWithDefaults is Load without requiring the file to exist; defaults and
// environment variables fill the rest.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	v := newViper()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "betmind")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "betmind")
	v.SetDefault("redis.fixture_ttl", "36h")

	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.operation_timeout", "5s")
	v.SetDefault("store.write_queue_size", 256)
	v.SetDefault("store.write_workers", 2)
	v.SetDefault("store.write_timeout", "10s")

	v.SetDefault("inference.base_url", "http://localhost:8000")
	v.SetDefault("inference.api_key", "")
	v.SetDefault("inference.analysis_path", "/v1/analysis")
	v.SetDefault("inference.fixtures_path", "/v1/fixtures")
	v.SetDefault("inference.timeout", "60s")
	v.SetDefault("inference.rate_limit", 2.0)
	v.SetDefault("inference.burst", 4)

	v.SetDefault("retry.inference.max_attempts", 3)
	v.SetDefault("retry.inference.initial_delay", "1s")
	v.SetDefault("retry.inference.max_delay", "0s")
	v.SetDefault("retry.inference.attempt_timeout", "60s")
	v.SetDefault("retry.inference.jitter", 0.0)
	v.SetDefault("retry.store.max_attempts", 2)
	v.SetDefault("retry.store.initial_delay", "200ms")
	v.SetDefault("retry.store.max_delay", "0s")
	v.SetDefault("retry.store.attempt_timeout", "5s")
	v.SetDefault("retry.store.jitter", 0.0)

	v.SetDefault("cache.ttl", "6h")
	v.SetDefault("cache.max_size", 500)

	v.SetDefault("schedule.timezone", "Europe/Paris")
	v.SetDefault("schedule.grace_window", "240m")
	v.SetDefault("schedule.active_window", "150m")

	v.SetDefault("simulation.trials", 10000)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.parallel_threshold", 200000)
	v.SetDefault("simulation.workers", 0)

	v.SetDefault("refresh.enabled", false)
	v.SetDefault("refresh.spec", "@every 2m")

	v.SetDefault("api.host", "")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.mode", "release")
	v.SetDefault("api.shutdown_timeout", "10s")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.secret_name", "")
}
