// Package config provides unified configuration for the taskgate gateway.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (TASKGATE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
//
// The token secret has a fixed lifecycle: loaded once at startup,
// validated present and non-empty, immutable for the process lifetime.
// Startup fails if it is absent; there is no silent default at a trust
// boundary.
package config

import "time"

// Config holds all configuration for the taskgate gateway.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Log           LogConfig           `yaml:"log"`
	Auth          AuthConfig          `yaml:"auth"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Storage       StorageConfig       `yaml:"storage"`
	Ownership     OwnershipConfig     `yaml:"ownership"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MiB
	TrustProxy      bool          `yaml:"trust_proxy"`      // default: false
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"; default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "json"
}

// AuthConfig holds token validation settings.
type AuthConfig struct {
	// TokenSecret is the HMAC key shared with the token-issuing service.
	// Required; rotation is a coordinated rollout across both services.
	TokenSecret     string        `yaml:"token_secret"`
	TokenSecretFile string        `yaml:"token_secret_file"` // _file variant for token_secret
	Session         SessionConfig `yaml:"session"`
}

// SessionConfig selects the session store backend.
type SessionConfig struct {
	// Store is "postgres" or "memory" (memory is dev/test only).
	Store    string         `yaml:"store"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RateLimitConfig holds counter store and budget settings.
type RateLimitConfig struct {
	// Store is "redis" or "memory". The memory backend only bounds a
	// single instance; use redis whenever more than one gateway runs.
	Store string      `yaml:"store"`
	Redis RedisConfig `yaml:"redis"`
	Read  LimitConfig `yaml:"read"`  // budget for GET/HEAD/OPTIONS
	Write LimitConfig `yaml:"write"` // budget for everything else
}

// RedisConfig holds Redis connection settings for the counter store.
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"` // _file variant for password
	DB           int    `yaml:"db"`
}

// LimitConfig is one fixed-window budget.
type LimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

// StorageConfig holds task persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

// OwnershipConfig holds the per-endpoint-class mismatch policy.
type OwnershipConfig struct {
	// MismatchStatus is "not_found" (default) or "forbidden".
	MismatchStatus string `yaml:"mismatch_status"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
			MaxBodySize:     1 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			Session: SessionConfig{
				Store: "postgres",
			},
		},
		RateLimit: RateLimitConfig{
			Store: "memory",
			Read:  LimitConfig{Requests: 100, WindowSeconds: 60},
			Write: LimitConfig{Requests: 30, WindowSeconds: 60},
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Ownership: OwnershipConfig{
			MismatchStatus: "not_found",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
