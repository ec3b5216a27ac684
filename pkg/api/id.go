package api

import "github.com/google/uuid"

// NewTaskID generates a unique task identifier.
func NewTaskID() string {
	return "task_" + uuid.NewString()
}
