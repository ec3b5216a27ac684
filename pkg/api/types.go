package api

import "time"

// Task is a single task record owned by exactly one principal.
//
// OwnerPrincipalID is never serialized: clients only ever see their own
// tasks, so echoing the owner would be redundant at best and a probe
// vector at worst.
type Task struct {
	ID               string    `json:"id"`
	OwnerPrincipalID string    `json:"-"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Completed        bool      `json:"completed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateTaskRequest is the body of POST /v1/tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateTaskRequest is the body of PATCH /v1/tasks/{id}. Nil fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// TaskList holds a list of tasks belonging to the requesting principal.
type TaskList struct {
	Object string  `json:"object"`
	Data   []*Task `json:"data"`
}
