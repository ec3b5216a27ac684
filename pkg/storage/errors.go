package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when no task with the given ID belongs to
	// the requesting principal. It covers both a genuinely missing task
	// and another principal's task; the two are indistinguishable here.
	ErrNotFound = errors.New("task not found")

	// ErrConflict is returned when a task with the given ID already exists.
	ErrConflict = errors.New("task already exists")
)
