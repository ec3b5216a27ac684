package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// auth.token_secret is required. A gateway without the shared secret
	// cannot validate any token; refusing to start beats rejecting every
	// request at runtime.
	if c.Auth.TokenSecret == "" {
		errs = append(errs, fmt.Errorf("auth.token_secret or auth.token_secret_file is required"))
	}

	// auth.session.store must be a known value.
	switch c.Auth.Session.Store {
	case "postgres", "memory":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.session.store must be \"postgres\" or \"memory\", got %q", c.Auth.Session.Store))
	}

	// If the session store is postgres, a DSN must be set.
	if c.Auth.Session.Store == "postgres" {
		if c.Auth.Session.Postgres.DSN == "" && c.Auth.Session.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("auth.session.postgres.dsn or auth.session.postgres.dsn_file is required when auth.session.store is \"postgres\""))
		}
	}

	// rate_limit.store must be a known value.
	switch c.RateLimit.Store {
	case "redis", "memory":
		// valid
	default:
		errs = append(errs, fmt.Errorf("rate_limit.store must be \"redis\" or \"memory\", got %q", c.RateLimit.Store))
	}

	// If the counter store is redis, an address must be set.
	if c.RateLimit.Store == "redis" && c.RateLimit.Redis.Addr == "" {
		errs = append(errs, fmt.Errorf("rate_limit.redis.addr is required when rate_limit.store is \"redis\""))
	}

	// Budgets must have positive windows when a limit is set.
	for _, b := range []struct {
		name  string
		limit LimitConfig
	}{
		{"rate_limit.read", c.RateLimit.Read},
		{"rate_limit.write", c.RateLimit.Write},
	} {
		if b.limit.Requests > 0 && b.limit.WindowSeconds <= 0 {
			errs = append(errs, fmt.Errorf("%s.window_seconds must be > 0 when requests is set", b.name))
		}
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// ownership.mismatch_status must be a known policy.
	switch c.Ownership.MismatchStatus {
	case "not_found", "forbidden":
		// valid
	default:
		errs = append(errs, fmt.Errorf("ownership.mismatch_status must be \"not_found\" or \"forbidden\", got %q", c.Ownership.MismatchStatus))
	}

	// log.format must be a known value.
	switch c.Log.Format {
	case "json", "text":
		// valid
	default:
		errs = append(errs, fmt.Errorf("log.format must be \"json\" or \"text\", got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
