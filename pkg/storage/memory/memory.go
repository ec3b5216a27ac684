// Package memory provides an in-memory task store for tests and
// single-process development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taskgate/taskgate/pkg/api"
	"github.com/taskgate/taskgate/pkg/auth"
	"github.com/taskgate/taskgate/pkg/storage"
)

// Store holds tasks in a map guarded by a read-write mutex.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*api.Task
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{tasks: make(map[string]*api.Task)}
}

// CreateTask persists a new task for the owner.
func (s *Store) CreateTask(_ context.Context, owner auth.Principal, task *api.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return storage.ErrConflict
	}

	t := *task
	t.OwnerPrincipalID = owner.ID
	s.tasks[task.ID] = &t
	return nil
}

// GetTask retrieves the owner's task by ID.
func (s *Store) GetTask(_ context.Context, owner auth.Principal, id string) (*api.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.OwnerPrincipalID != owner.ID {
		return nil, storage.ErrNotFound
	}

	out := *t
	return &out, nil
}

// ListTasks returns the owner's tasks, newest first.
func (s *Store) ListTasks(_ context.Context, owner auth.Principal) ([]*api.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.Task
	for _, t := range s.tasks {
		if t.OwnerPrincipalID == owner.ID {
			c := *t
			out = append(out, &c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateTask applies a partial update to the owner's task.
func (s *Store) UpdateTask(_ context.Context, owner auth.Principal, id string, patch *api.UpdateTaskRequest) (*api.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.OwnerPrincipalID != owner.ID {
		return nil, storage.ErrNotFound
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.UpdatedAt = time.Now().UTC()

	out := *t
	return &out, nil
}

// DeleteTask removes the owner's task.
func (s *Store) DeleteTask(_ context.Context, owner auth.Principal, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.OwnerPrincipalID != owner.ID {
		return storage.ErrNotFound
	}

	delete(s.tasks, id)
	return nil
}

// Exists reports whether any task with the ID exists, regardless of owner.
func (s *Store) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.tasks[id]
	return ok, nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
