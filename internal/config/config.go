// Package config provides centralized configuration for the service,
// loaded from environment variables with defaults, validated on startup
// to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Upload  UploadConfig
	Schema  SchemaConfig
	Session SessionConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// StoreConfig selects and configures the tabular store backend.
type StoreConfig struct {
	// Driver is the backend: "sqlite" or "postgres" (default: sqlite)
	Driver string `env:"STORE_DRIVER" default:"sqlite"`

	// DSN is the SQLite file path or PostgreSQL connection string
	// (default: consolidated_data.db)
	DSN string `env:"STORE_DSN" default:"consolidated_data.db"`

	// RetryAfter is the backoff suggested to clients when the store is
	// unavailable (default: 5s). Nothing retries automatically.
	RetryAfter time.Duration `env:"STORE_RETRY_AFTER" default:"5s"`
}

// UploadConfig holds upload processing settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`
}

// SchemaConfig seeds each new session's target schema.
type SchemaConfig struct {
	// DefaultFields is the comma-separated initial target field list.
	DefaultFields []string `env:"SCHEMA_DEFAULT_FIELDS" default:"Category,SKU,Product Name,Product Description,Stock on Hand,Sold QTY"`
}

// SessionConfig holds login session settings.
type SessionConfig struct {
	// TTL is how long a login session stays valid (default: 12h)
	TTL time.Duration `env:"SESSION_TTL" default:"12h"`

	// MinPasswordLength is the minimum registration password length (default: 4)
	MinPasswordLength int `env:"SESSION_MIN_PASSWORD_LENGTH" default:"4"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the per-IP rate limit (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
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
