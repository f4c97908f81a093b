// Package config provides application configuration management from environment
// variables with an optional YAML overlay file.
//
// # Overview
//
// This package loads and validates configuration with sensible defaults for all
// settings. Values come from three layers, later layers winning: built-in
// defaults, an optional YAML file named by CONFMS_CONFIG_FILE, and environment
// variables.
//
// # Configuration Structure
//
// Server settings:
//
//	CONFMS_HOST="0.0.0.0"
//	CONFMS_PORT="8080"
//	CONFMS_HEALTH_PORT="9090"
//	CONFMS_READ_TIMEOUT="15s"
//	CONFMS_WRITE_TIMEOUT="15s"
//	CONFMS_SHUTDOWN_TIMEOUT="30s"
//
// Database settings:
//
//	CONFMS_POSTGRES_URL="postgres://localhost/confms"
//	CONFMS_POSTGRES_MAX_CONNS="25"
//	CONFMS_POSTGRES_CONN_LIFETIME="30m"
//
// Redis settings (optional, backs the distributed role cache):
//
//	CONFMS_REDIS_URL="localhost:6379"
//	CONFMS_REDIS_PASSWORD=""
//	CONFMS_REDIS_DB="0"
//
// Auth settings:
//
//	CONFMS_TOKEN_SECRET="<at least 32 bytes>"
//	CONFMS_TOKEN_TTL="24h"
//	CONFMS_BCRYPT_COST="12"
//	CONFMS_ROLE_CACHE_SIZE="1024"
//	CONFMS_ROLE_CACHE_TTL="5m"
//
// Audit settings:
//
//	CONFMS_AUDIT_ENABLED="true"
//	CONFMS_AUDIT_FILE="/var/log/confms/audit.log"
//	CONFMS_AUDIT_RETENTION_DAYS="90"
//	CONFMS_AUDIT_SWEEP_SCHEDULE="0 3 * * *"
//
// Observability settings:
//
//	CONFMS_LOG_LEVEL="info"  # debug, info, warn, error
//	CONFMS_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/auth: Uses token and hashing configuration
//   - pkg/audit: Uses retention configuration
//   - pkg/observability: Uses log level and metrics configuration
package config
