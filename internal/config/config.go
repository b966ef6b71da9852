// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Files    FileStoreConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8000)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8000"`

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

// Database backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Backend selects the dataset store: postgres or memory (default: postgres)
	Backend string `env:"DATABASE_BACKEND" default:"postgres"`

	// URL is the PostgreSQL connection string (required for the postgres backend)
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

	// AutoMigrate applies pending migrations at server start (default: false)
	AutoMigrate bool `env:"DATABASE_AUTO_MIGRATE" default:"false"`
}

// File store backends.
const (
	FilesLocal = "local"
	FilesS3    = "s3"
)

// FileStoreConfig holds settings for storing the original uploaded files.
type FileStoreConfig struct {
	// Backend selects where uploads are kept: local or s3 (default: local)
	Backend string `env:"FILES_BACKEND" default:"local"`

	// Dir is the root directory of the local backend (default: ./media)
	Dir string `env:"FILES_DIR" envAlt:"MEDIA_ROOT" default:"./media"`

	// S3Endpoint is the host:port of the S3-compatible service
	S3Endpoint string `env:"S3_ENDPOINT"`

	// S3AccessKey and S3SecretKey are the static credentials
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	// S3Bucket is created on startup when missing (default: equipment-uploads)
	S3Bucket string `env:"S3_BUCKET" default:"equipment-uploads"`

	// S3Region is passed to bucket creation (default: us-east-1)
	S3Region string `env:"S3_REGION" default:"us-east-1"`

	// S3UseSSL enables TLS to the endpoint (default: false)
	S3UseSSL bool `env:"S3_USE_SSL" default:"false"`
}

// UploadConfig holds CSV upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// RawDataLimit is the default and maximum number of rows served by raw_data (default: 50)
	RawDataLimit int `env:"UPLOAD_RAW_DATA_LIMIT" default:"50"`

	// Timeout is the maximum duration for storing one upload (default: 2m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for upload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// TokenSecret signs API tokens (required, at least 32 bytes)
	TokenSecret string `env:"SECURITY_TOKEN_SECRET" envAlt:"SECRET_KEY" required:"true"`

	// TokenTTL is how long an issued token stays valid (default: 24h)
	TokenTTL time.Duration `env:"SECURITY_TOKEN_TTL" default:"24h"`

	// TokenIssuer is the iss claim of issued tokens (default: chemical-visualizer)
	TokenIssuer string `env:"SECURITY_TOKEN_ISSUER" default:"chemical-visualizer"`

	// BcryptCost is the password hashing cost (default: 12)
	BcryptCost int `env:"SECURITY_BCRYPT_COST" default:"12"`

	// AllowAnonymousUpload lets requests without a token create datasets (default: false)
	AllowAnonymousUpload bool `env:"SECURITY_ALLOW_ANONYMOUS_UPLOAD" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
