// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Audit    AuditConfig
	Backup   BackupConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings. Only used by the
// postgres store backend.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// StoreConfig selects where the program is kept.
type StoreConfig struct {
	// Backend is memory or postgres (default: memory)
	Backend string `env:"STORE_BACKEND" default:"memory"`

	// SnapshotPath is the JSON file the memory backend persists to.
	// Empty keeps the program in memory only. (default: data/program.json)
	SnapshotPath string `env:"STORE_SNAPSHOT_PATH" default:"data/program.json"`
}

// ImportConfig holds document import settings.
type ImportConfig struct {
	// MaxDocumentSize is the largest accepted document in bytes (default: 8MB)
	MaxDocumentSize int64 `env:"IMPORT_MAX_DOCUMENT_SIZE" default:"8388608"`

	// Timeout is the maximum duration for a single import (default: 2m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"2m"`

	// LeaseWait is how long an import or edit waits for a running import (default: 30s)
	LeaseWait time.Duration `env:"IMPORT_LEASE_WAIT" default:"30s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit is requests per minute for import and restore endpoints (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// AuditConfig holds audit trail settings.
type AuditConfig struct {
	// Capacity is how many entries the in-memory trail keeps (default: 500)
	Capacity int `env:"AUDIT_CAPACITY" default:"500"`
}

// BackupConfig holds object storage backup settings.
type BackupConfig struct {
	// Enabled turns on backup storage and the backup scheduler (default: false)
	Enabled bool `env:"BACKUP_ENABLED" default:"false"`

	// Endpoint is a custom S3 endpoint, e.g. a MinIO URL. Empty uses AWS.
	Endpoint string `env:"BACKUP_ENDPOINT"`

	// Region is the bucket region (default: us-east-1)
	Region string `env:"BACKUP_REGION" envAlt:"AWS_REGION" default:"us-east-1"`

	// Bucket is the bucket backups are written to
	Bucket string `env:"BACKUP_BUCKET"`

	// AccessKeyID and SecretAccessKey are static credentials. Empty uses the
	// default AWS credential chain.
	AccessKeyID     string `env:"BACKUP_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"BACKUP_SECRET_ACCESS_KEY"`

	// Prefix is prepended to every backup key (default: liftlog/)
	Prefix string `env:"BACKUP_PREFIX" default:"liftlog/"`

	// Interval is how often the scheduler backs up the program (default: 24h)
	Interval time.Duration `env:"BACKUP_INTERVAL" default:"24h"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
