package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/uth-confms/confms/pkg/observability"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{name: "true string", envValue: "true", defaultValue: false, want: true},
		{name: "one string", envValue: "1", defaultValue: false, want: true},
		{name: "false string", envValue: "false", defaultValue: true, want: false},
		{name: "unset returns default", envValue: "", defaultValue: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			}

			got := getEnvBool(key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvDuration tests the getEnvDuration helper function
func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		want         time.Duration
	}{
		{name: "valid duration", envValue: "45s", defaultValue: time.Minute, want: 45 * time.Second},
		{name: "invalid duration returns default", envValue: "nope", defaultValue: time.Minute, want: time.Minute},
		{name: "unset returns default", envValue: "", defaultValue: time.Minute, want: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_DURATION_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			}

			got := getEnvDuration(key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

// validConfig returns a configuration that passes validation
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Database.URL = "postgres://localhost/confms_test"
	cfg.Auth.TokenSecret = "0123456789abcdef0123456789abcdef"
	return cfg
}

// TestValidate tests configuration validation
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: true,
		},
		{
			name:    "same server and health port",
			mutate:  func(c *Config) { c.Server.HealthPort = c.Server.Port },
			wantErr: true,
		},
		{
			name:    "missing postgres URL",
			mutate:  func(c *Config) { c.Database.URL = "" },
			wantErr: true,
		},
		{
			name:    "missing token secret",
			mutate:  func(c *Config) { c.Auth.TokenSecret = "" },
			wantErr: true,
		},
		{
			name:    "short token secret",
			mutate:  func(c *Config) { c.Auth.TokenSecret = "too-short" },
			wantErr: true,
		},
		{
			name:    "zero token TTL",
			mutate:  func(c *Config) { c.Auth.TokenTTL = 0 },
			wantErr: true,
		},
		{
			name:    "bcrypt cost out of range",
			mutate:  func(c *Config) { c.Auth.BcryptCost = 32 },
			wantErr: true,
		},
		{
			name:    "audit enabled with zero retention",
			mutate:  func(c *Config) { c.Audit.RetentionDays = 0 },
			wantErr: true,
		},
		{
			name:    "audit disabled allows zero retention",
			mutate:  func(c *Config) { c.Audit.Enabled = false; c.Audit.RetentionDays = 0 },
			wantErr: false,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Observability.LogLevel = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestLoadConfigEnvOverride tests that environment variables override defaults
func TestLoadConfigEnvOverride(t *testing.T) {
	os.Setenv("CONFMS_POSTGRES_URL", "postgres://db.internal/confms")
	os.Setenv("CONFMS_TOKEN_SECRET", "0123456789abcdef0123456789abcdef")
	os.Setenv("CONFMS_PORT", "8888")
	os.Setenv("CONFMS_TOKEN_TTL", "2h")
	os.Setenv("CONFMS_LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("CONFMS_POSTGRES_URL")
		os.Unsetenv("CONFMS_TOKEN_SECRET")
		os.Unsetenv("CONFMS_PORT")
		os.Unsetenv("CONFMS_TOKEN_TTL")
		os.Unsetenv("CONFMS_LOG_LEVEL")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "8888" {
		t.Errorf("Server.Port = %v, want 8888", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://db.internal/confms" {
		t.Errorf("Database.URL = %v", cfg.Database.URL)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 2h", cfg.Auth.TokenTTL)
	}
	if cfg.Observability.Level() != observability.DebugLevel {
		t.Errorf("Observability.Level() = %v, want DebugLevel", cfg.Observability.Level())
	}
}

// TestLoadConfigFileOverlay tests the YAML config file layer
func TestLoadConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confms.yaml")
	contents := `
server:
  port: "7070"
database:
  url: "postgres://file.internal/confms"
auth:
  token_secret: "file-secret-0123456789abcdef012345"
  bcrypt_cost: 10
audit:
  retention_days: 30
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	os.Setenv("CONFMS_CONFIG_FILE", path)
	// Env still wins over the file.
	os.Setenv("CONFMS_POSTGRES_URL", "postgres://env.internal/confms")
	defer func() {
		os.Unsetenv("CONFMS_CONFIG_FILE")
		os.Unsetenv("CONFMS_POSTGRES_URL")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("Server.Port = %v, want 7070", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://env.internal/confms" {
		t.Errorf("Database.URL = %v, want env value", cfg.Database.URL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("Auth.BcryptCost = %v, want 10", cfg.Auth.BcryptCost)
	}
	if cfg.Audit.RetentionDays != 30 {
		t.Errorf("Audit.RetentionDays = %v, want 30", cfg.Audit.RetentionDays)
	}
	// Defaults still apply where neither layer sets a value.
	if cfg.Server.HealthPort != "9090" {
		t.Errorf("Server.HealthPort = %v, want 9090", cfg.Server.HealthPort)
	}
}

// TestLoadConfigMissingFile tests that a bad config file path is an error
func TestLoadConfigMissingFile(t *testing.T) {
	os.Setenv("CONFMS_CONFIG_FILE", "/nonexistent/confms.yaml")
	defer os.Unsetenv("CONFMS_CONFIG_FILE")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() expected error for missing config file")
	}
}
