// Package config provides configuration management for the BetMind service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Store      StoreConfig      `mapstructure:"store" validate:"required"`
	Inference  InferenceConfig  `mapstructure:"inference" validate:"required"`
	Retry      RetryConfig      `mapstructure:"retry" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache" validate:"required"`
	Schedule   ScheduleConfig   `mapstructure:"schedule" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Refresh    RefreshConfig    `mapstructure:"refresh"`
	API        APIConfig        `mapstructure:"api" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
	// URL takes precedence over the discrete fields when set.
	URL string `mapstructure:"url"`
}

// DSN returns the connection string for pgx.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// RedisConfig represents the redis remote store connection
type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db" validate:"gte=0"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
	FixtureTTL time.Duration `mapstructure:"fixture_ttl"`
}

// StoreConfig selects and tunes the remote cache store
type StoreConfig struct {
	Backend          string        `mapstructure:"backend" validate:"required,storebackend"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout" validate:"gt=0"`
	WriteQueueSize   int           `mapstructure:"write_queue_size" validate:"gt=0"`
	WriteWorkers     int           `mapstructure:"write_workers" validate:"gt=0"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
}

// InferenceConfig represents the external inference service
type InferenceConfig struct {
	BaseURL      string        `mapstructure:"base_url" validate:"required,url"`
	APIKey       string        `mapstructure:"api_key"`
	AnalysisPath string        `mapstructure:"analysis_path" validate:"required"`
	FixturesPath string        `mapstructure:"fixtures_path" validate:"required"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit    float64       `mapstructure:"rate_limit" validate:"gt=0"`
	Burst        int           `mapstructure:"burst" validate:"gt=0"`
}

// RetryPolicyConfig is one bounded backoff policy. A zero MaxAttempts selects
// the built-in policy for that dependency.
type RetryPolicyConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts" validate:"gte=0"`
	InitialDelay   time.Duration `mapstructure:"initial_delay" validate:"gte=0"`
	MaxDelay       time.Duration `mapstructure:"max_delay" validate:"gte=0"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" validate:"gte=0"`
	Jitter         float64       `mapstructure:"jitter" validate:"gte=0,lt=1"`
}

// RetryConfig holds the policies for each remote dependency
type RetryConfig struct {
	Inference RetryPolicyConfig `mapstructure:"inference"`
	Store     RetryPolicyConfig `mapstructure:"store"`
}

// CacheConfig represents the in-process artifact cache
type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl" validate:"gt=0"`
	MaxSize int           `mapstructure:"max_size" validate:"gt=0"`
}

// ScheduleConfig represents fixture lifecycle windows
type ScheduleConfig struct {
	Timezone     string        `mapstructure:"timezone" validate:"required"`
	GraceWindow  time.Duration `mapstructure:"grace_window" validate:"gt=0"`
	ActiveWindow time.Duration `mapstructure:"active_window" validate:"gt=0"`
}

// ProfileConfig tunes the simulation for one category
type ProfileConfig struct {
	Baseline    float64 `mapstructure:"baseline" validate:"gte=0"`
	StdDev      float64 `mapstructure:"std_dev" validate:"gte=0"`
	PowerFactor float64 `mapstructure:"power_factor" validate:"gte=0"`
	BinWidth    int     `mapstructure:"bin_width" validate:"gt=0"`
	NoDraws     bool    `mapstructure:"no_draws"`
	UseTempo    bool    `mapstructure:"use_tempo"`
}

// SimulationConfig represents the Monte Carlo engine
type SimulationConfig struct {
	Trials            int                      `mapstructure:"trials" validate:"gt=0"`
	Seed              int64                    `mapstructure:"seed"`
	ParallelThreshold int                      `mapstructure:"parallel_threshold" validate:"gt=0"`
	Workers           int                      `mapstructure:"workers" validate:"gte=0"`
	Profiles          map[string]ProfileConfig `mapstructure:"profiles" validate:"dive,keys,category,endkeys"`
}

// RefreshConfig represents the periodic fixture refresh
type RefreshConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec" validate:"required_if=Enabled true"`
}

// APIConfig represents the HTTP API served to the UI
type APIConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	Mode            string        `mapstructure:"mode" validate:"omitempty,oneof=debug release test"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// Address returns host:port
func (a APIConfig) Address() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// SecretsConfig points at an optional AWS Secrets Manager overlay
type SecretsConfig struct {
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// Enabled reports whether a secrets overlay is configured
func (s SecretsConfig) Enabled() bool {
	return s.Region != "" && s.SecretName != ""
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
