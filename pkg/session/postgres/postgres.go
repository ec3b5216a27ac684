// Package postgres provides a read-only pgx implementation of
// session.Store against the auth service's database.
//
// The store issues exactly one query shape and carries no migration
// machinery: the sessions table belongs to the auth service, which owns
// its schema and its writes.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskgate/taskgate/pkg/session"
)

// Config holds connection settings for the auth service's database.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string

	// MaxConns is the maximum number of pooled connections (default: 10).
	// The session lookup is a point read on a unique index; it needs far
	// fewer connections than the task store.
	MaxConns int32

	// MinConns is the minimum number of idle connections (default: 2).
	MinConns int32

	// MaxConnLifetime is the maximum connection lifetime (default: 5 minutes).
	MaxConnLifetime time.Duration
}

// defaults applies default values for unset configuration fields.
func (c *Config) defaults() {
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MinConns == 0 {
		c.MinConns = 2
	}
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = 5 * time.Minute
	}
}

// Store is a PostgreSQL-backed session.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements session.Store at compile time.
var _ session.Store = (*Store)(nil)

// New creates a store and verifies connectivity.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to session database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// NewFromPool wraps an existing pool. Used by tests.
func NewFromPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// FindByTokenHash performs the single read this package exists for.
func (s *Store) FindByTokenHash(ctx context.Context, digest string) (*session.Session, error) {
	var sess session.Session

	err := s.pool.QueryRow(ctx, `
		SELECT id, principal_id, token_hash, expires_at, revoked, last_activity_at
		FROM sessions
		WHERE token_hash = $1
	`, digest).Scan(
		&sess.ID, &sess.PrincipalID, &sess.TokenHash,
		&sess.ExpiresAt, &sess.Revoked, &sess.LastActivityAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	return &sess, nil
}

// Ping verifies the session database is reachable. Used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
