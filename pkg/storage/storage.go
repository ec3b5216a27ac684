package storage

import (
	"context"

	"github.com/taskgate/taskgate/pkg/api"
	"github.com/taskgate/taskgate/pkg/auth"
)

// Store handles persistence of tasks. All single-task operations scope
// the lookup by owner; list operations filter by owner unconditionally.
type Store interface {
	// CreateTask persists a new task for the owner. Returns ErrConflict
	// if a task with the same ID already exists.
	CreateTask(ctx context.Context, owner auth.Principal, task *api.Task) error

	// GetTask retrieves a task by ID. Returns ErrNotFound if no task with
	// that ID belongs to the owner.
	GetTask(ctx context.Context, owner auth.Principal, id string) (*api.Task, error)

	// ListTasks returns all of the owner's tasks, newest first. There is
	// no unscoped listing.
	ListTasks(ctx context.Context, owner auth.Principal) ([]*api.Task, error)

	// UpdateTask applies a partial update to the owner's task in a single
	// owner-scoped write. Returns the updated task, or ErrNotFound.
	UpdateTask(ctx context.Context, owner auth.Principal, id string, patch *api.UpdateTaskRequest) (*api.Task, error)

	// DeleteTask removes the owner's task. Returns ErrNotFound if no task
	// with that ID belongs to the owner.
	DeleteTask(ctx context.Context, owner auth.Principal, id string) error

	// Exists reports whether any task with the ID exists, regardless of
	// owner. Only used by endpoints that choose the 403 mismatch policy;
	// it returns a bare bool and never the task itself.
	Exists(ctx context.Context, id string) (bool, error)

	// HealthCheck verifies the store connection is functional.
	HealthCheck(ctx context.Context) error

	// Close releases database connections and resources.
	Close() error
}
