package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, TASKGATE_CONFIG env, ./config.yaml, /etc/taskgate/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. TASKGATE_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/taskgate/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check TASKGATE_CONFIG env var.
	if envPath := os.Getenv("TASKGATE_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/taskgate/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps TASKGATE_* environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASKGATE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TASKGATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TASKGATE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TASKGATE_TOKEN_SECRET"); v != "" {
		cfg.Auth.TokenSecret = v
	}
	if v := os.Getenv("TASKGATE_SESSION_STORE"); v != "" {
		cfg.Auth.Session.Store = v
	}
	if v := os.Getenv("TASKGATE_SESSION_DSN"); v != "" {
		cfg.Auth.Session.Postgres.DSN = v
	}
	if v := os.Getenv("TASKGATE_RATELIMIT_STORE"); v != "" {
		cfg.RateLimit.Store = v
	}
	if v := os.Getenv("TASKGATE_REDIS_ADDR"); v != "" {
		cfg.RateLimit.Redis.Addr = v
	}
	if v := os.Getenv("TASKGATE_REDIS_PASSWORD"); v != "" {
		cfg.RateLimit.Redis.Password = v
	}
	if v := os.Getenv("TASKGATE_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("TASKGATE_TASKS_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("TASKGATE_MISMATCH_STATUS"); v != "" {
		cfg.Ownership.MismatchStatus = v
	}
}

// resolveFileReferences reads _file fields and populates the corresponding
// value fields. For each field ending in _file, if the value field is empty
// and the file field is set, the file is read, whitespace is trimmed, and
// the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// auth.token_secret_file -> auth.token_secret
	if cfg.Auth.TokenSecretFile != "" && cfg.Auth.TokenSecret == "" {
		val, err := readSecretFile(cfg.Auth.TokenSecretFile)
		if err != nil {
			return fmt.Errorf("auth.token_secret_file: %w", err)
		}
		cfg.Auth.TokenSecret = val
	}

	// auth.session.postgres.dsn_file -> auth.session.postgres.dsn
	if cfg.Auth.Session.Postgres.DSNFile != "" && cfg.Auth.Session.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Auth.Session.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("auth.session.postgres.dsn_file: %w", err)
		}
		cfg.Auth.Session.Postgres.DSN = val
	}

	// rate_limit.redis.password_file -> rate_limit.redis.password
	if cfg.RateLimit.Redis.PasswordFile != "" && cfg.RateLimit.Redis.Password == "" {
		val, err := readSecretFile(cfg.RateLimit.Redis.PasswordFile)
		if err != nil {
			return fmt.Errorf("rate_limit.redis.password_file: %w", err)
		}
		cfg.RateLimit.Redis.Password = val
	}

	// storage.postgres.dsn_file -> storage.postgres.dsn
	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding
// whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
