// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling; every query carries the owner
// predicate so ownership is enforced in the database, not in Go.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskgate/taskgate/pkg/api"
	"github.com/taskgate/taskgate/pkg/auth"
	"github.com/taskgate/taskgate/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
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

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// CreateTask persists a new task for the owner.
func (s *Store) CreateTask(ctx context.Context, owner auth.Principal, task *api.Task) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, owner_principal_id, title, description, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		task.ID, owner.ID, task.Title, task.Description, task.Completed,
		task.CreatedAt, task.UpdatedAt,
	)

	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting task: %w", err)
	}

	return nil
}

// GetTask retrieves the owner's task by ID. The owner predicate is part of
// the WHERE clause, so another principal's task scans as no rows.
func (s *Store) GetTask(ctx context.Context, owner auth.Principal, id string) (*api.Task, error) {
	var t api.Task

	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_principal_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND owner_principal_id = $2
	`, id, owner.ID).Scan(
		&t.ID, &t.OwnerPrincipalID, &t.Title, &t.Description, &t.Completed,
		&t.CreatedAt, &t.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}

	return &t, nil
}

// ListTasks returns the owner's tasks, newest first.
func (s *Store) ListTasks(ctx context.Context, owner auth.Principal) ([]*api.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_principal_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE owner_principal_id = $1
		ORDER BY created_at DESC
	`, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var out []*api.Task
	for rows.Next() {
		var t api.Task
		if err := rows.Scan(
			&t.ID, &t.OwnerPrincipalID, &t.Title, &t.Description, &t.Completed,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		out = append(out, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	return out, nil
}

// UpdateTask applies a partial update in a single owner-scoped statement.
// COALESCE leaves unset fields unchanged without a read-modify-write.
func (s *Store) UpdateTask(ctx context.Context, owner auth.Principal, id string, patch *api.UpdateTaskRequest) (*api.Task, error) {
	var t api.Task

	err := s.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title       = COALESCE($3, title),
		    description = COALESCE($4, description),
		    completed   = COALESCE($5, completed),
		    updated_at  = now()
		WHERE id = $1 AND owner_principal_id = $2
		RETURNING id, owner_principal_id, title, description, completed, created_at, updated_at
	`, id, owner.ID, patch.Title, patch.Description, patch.Completed).Scan(
		&t.ID, &t.OwnerPrincipalID, &t.Title, &t.Description, &t.Completed,
		&t.CreatedAt, &t.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	return &t, nil
}

// DeleteTask removes the owner's task.
func (s *Store) DeleteTask(ctx context.Context, owner auth.Principal, id string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM tasks
		WHERE id = $1 AND owner_principal_id = $2
	`, id, owner.ID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// Exists reports whether any task with the ID exists, regardless of owner.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking task existence: %w", err)
	}
	return exists, nil
}

// HealthCheck verifies the database connection is functional.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isDuplicateKey reports whether the error is a unique constraint violation.
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
