package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskgate/taskgate/pkg/api"
	"github.com/taskgate/taskgate/pkg/auth"
	"github.com/taskgate/taskgate/pkg/observability"
	"github.com/taskgate/taskgate/pkg/storage"
)

// TaskHandler serves the task resource API. Every operation resolves the
// principal attached by the auth middleware and passes it into the store,
// where the ownership predicate lives.
type TaskHandler struct {
	store    storage.Store
	mismatch storage.MismatchPolicy
}

// NewTaskHandler creates a handler over the given store. The mismatch
// policy decides whether another principal's task ID answers 404 or 403.
func NewTaskHandler(store storage.Store, mismatch storage.MismatchPolicy) *TaskHandler {
	if !mismatch.Valid() {
		mismatch = storage.MismatchNotFound
	}
	return &TaskHandler{store: store, mismatch: mismatch}
}

// Register mounts the task routes on the mux.
func (h *TaskHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/tasks", h.createTask)
	mux.HandleFunc("GET /v1/tasks", h.listTasks)
	mux.HandleFunc("GET /v1/tasks/{id}", h.getTask)
	mux.HandleFunc("PATCH /v1/tasks/{id}", h.updateTask)
	mux.HandleFunc("DELETE /v1/tasks/{id}", h.deleteTask)
}

// principal resolves the authenticated principal. The auth middleware
// attaches it before any task route runs; its absence is a wiring bug and
// the request is rejected rather than served unscoped.
func (h *TaskHandler) principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok || p.ID == "" {
		slog.Error("task handler reached without principal", "path", r.URL.Path)
		WriteAPIError(w, api.NewUnauthorizedError())
		return auth.Principal{}, false
	}
	return p, true
}

func (h *TaskHandler) createTask(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req api.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, api.NewInvalidRequestError("", "invalid JSON body"))
		return
	}
	if apiErr := req.Validate(); apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}

	now := time.Now().UTC()
	task := &api.Task{
		ID:          api.NewTaskID(),
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.store.CreateTask(r.Context(), p, task); err != nil {
		h.storeError(w, r, err)
		return
	}

	task.OwnerPrincipalID = p.ID
	WriteJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	tasks, err := h.store.ListTasks(r.Context(), p)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*api.Task{}
	}

	WriteJSON(w, http.StatusOK, api.TaskList{Object: "list", Data: tasks})
}

func (h *TaskHandler) getTask(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	task, err := h.store.GetTask(r.Context(), p, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.writeMiss(w, r, r.PathValue("id"))
		return
	}
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) updateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req api.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, api.NewInvalidRequestError("", "invalid JSON body"))
		return
	}
	if apiErr := req.Validate(); apiErr != nil {
		WriteAPIError(w, apiErr)
		return
	}

	task, err := h.store.UpdateTask(r.Context(), p, r.PathValue("id"), &req)
	if errors.Is(err, storage.ErrNotFound) {
		h.writeMiss(w, r, r.PathValue("id"))
		return
	}
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	err := h.store.DeleteTask(r.Context(), p, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.writeMiss(w, r, r.PathValue("id"))
		return
	}
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeMiss answers an owner-scoped lookup that found nothing. Under the
// not_found policy the response is always 404, hiding whether the ID
// exists at all. Under the forbidden policy an existence probe upgrades
// the miss to 403 when the task belongs to someone else.
func (h *TaskHandler) writeMiss(w http.ResponseWriter, r *http.Request, id string) {
	if h.mismatch == storage.MismatchForbidden {
		exists, err := h.store.Exists(r.Context(), id)
		if err != nil {
			h.storeError(w, r, err)
			return
		}
		if exists {
			WriteAPIError(w, api.NewForbiddenError("task belongs to another principal"))
			return
		}
	}
	WriteAPIError(w, api.NewNotFoundError("task not found"))
}

// storeError answers an unexpected store failure. The gateway fails
// closed: the caller gets a 503 and applies its own backoff.
func (h *TaskHandler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrConflict) {
		WriteAPIError(w, api.NewInvalidRequestError("id", "task already exists"))
		return
	}

	observability.StoreErrorsTotal.WithLabelValues("tasks").Inc()
	slog.Error("task store error",
		"request_id", RequestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	WriteAPIError(w, api.NewUnavailableError("service temporarily unavailable"))
}
