package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uth-confms/confms/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration
	Redis RedisConfig `yaml:"redis"`

	// Auth configuration
	Auth AuthConfig `yaml:"auth"`

	// Audit configuration
	Audit AuditConfig `yaml:"audit"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL          string        `yaml:"url"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	ConnLifetime time.Duration `yaml:"conn_lifetime"`
}

// RedisConfig holds the optional Redis role-cache backend configuration
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether a Redis backend was configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// AuthConfig holds credential and token settings
type AuthConfig struct {
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	BcryptCost  int           `yaml:"bcrypt_cost"`

	// Role cache sizing
	RoleCacheSize int           `yaml:"role_cache_size"`
	RoleCacheTTL  time.Duration `yaml:"role_cache_ttl"`
}

// AuditConfig holds audit trail settings
type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	FilePath      string `yaml:"file_path"`
	RetentionDays int    `yaml:"retention_days"`

	// Cron schedule for the retention sweeper
	SweepSchedule string `yaml:"sweep_schedule"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// Level converts the configured log level string into an observability level.
func (c ObservabilityConfig) Level() observability.LogLevel {
	return parseLogLevel(c.LogLevel)
}

// LoadConfig loads configuration from an optional YAML file overlaid with
// environment variables. Environment variables take precedence.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFMS_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns the built-in defaults
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			ConnLifetime: 30 * time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL:      24 * time.Hour,
			BcryptCost:    12,
			RoleCacheSize: 1024,
			RoleCacheTTL:  5 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:       true,
			RetentionDays: 90,
			SweepSchedule: "0 3 * * *",
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}

// loadFile overlays values from a YAML config file
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// loadEnv overlays values from environment variables
func (c *Config) loadEnv() {
	// Server
	c.Server.Host = getEnv("CONFMS_HOST", c.Server.Host)
	c.Server.Port = getEnv("CONFMS_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("CONFMS_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("CONFMS_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("CONFMS_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("CONFMS_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.HealthPort = getEnv("CONFMS_HEALTH_PORT", c.Server.HealthPort)

	// Database
	c.Database.URL = getEnv("CONFMS_POSTGRES_URL", c.Database.URL)
	c.Database.MaxOpenConns = getEnvInt("CONFMS_POSTGRES_MAX_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvInt("CONFMS_POSTGRES_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnLifetime = getEnvDuration("CONFMS_POSTGRES_CONN_LIFETIME", c.Database.ConnLifetime)

	// Redis
	c.Redis.URL = getEnv("CONFMS_REDIS_URL", c.Redis.URL)
	c.Redis.Password = getEnv("CONFMS_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("CONFMS_REDIS_DB", c.Redis.DB)

	// Auth
	c.Auth.TokenSecret = getEnv("CONFMS_TOKEN_SECRET", c.Auth.TokenSecret)
	c.Auth.TokenTTL = getEnvDuration("CONFMS_TOKEN_TTL", c.Auth.TokenTTL)
	c.Auth.BcryptCost = getEnvInt("CONFMS_BCRYPT_COST", c.Auth.BcryptCost)
	c.Auth.RoleCacheSize = getEnvInt("CONFMS_ROLE_CACHE_SIZE", c.Auth.RoleCacheSize)
	c.Auth.RoleCacheTTL = getEnvDuration("CONFMS_ROLE_CACHE_TTL", c.Auth.RoleCacheTTL)

	// Audit
	c.Audit.Enabled = getEnvBool("CONFMS_AUDIT_ENABLED", c.Audit.Enabled)
	c.Audit.FilePath = getEnv("CONFMS_AUDIT_FILE", c.Audit.FilePath)
	c.Audit.RetentionDays = getEnvInt("CONFMS_AUDIT_RETENTION_DAYS", c.Audit.RetentionDays)
	c.Audit.SweepSchedule = getEnv("CONFMS_AUDIT_SWEEP_SCHEDULE", c.Audit.SweepSchedule)

	// Observability
	c.Observability.LogLevel = getEnv("CONFMS_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.MetricsEnabled = getEnvBool("CONFMS_METRICS_ENABLED", c.Observability.MetricsEnabled)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}

	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("token secret is required")
	}
	if len(c.Auth.TokenSecret) < 32 {
		return fmt.Errorf("token secret must be at least 32 bytes")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31")
	}
	if c.Auth.RoleCacheSize <= 0 {
		return fmt.Errorf("role cache size must be positive")
	}

	if c.Audit.Enabled && c.Audit.RetentionDays <= 0 {
		return fmt.Errorf("audit retention days must be positive")
	}

	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Observability.LogLevel)
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
