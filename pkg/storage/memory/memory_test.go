package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskgate/taskgate/pkg/api"
	"github.com/taskgate/taskgate/pkg/auth"
	"github.com/taskgate/taskgate/pkg/storage"
)

var (
	alice = auth.Principal{ID: "user-123"}
	bob   = auth.Principal{ID: "user-456"}
)

func mustCreate(t *testing.T, s *Store, owner auth.Principal, id, title string) *api.Task {
	t.Helper()
	task := &api.Task{
		ID:        id,
		Title:     title,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.CreateTask(context.Background(), owner, task); err != nil {
		t.Fatalf("CreateTask(%q): %v", id, err)
	}
	return task
}

func TestCreateAndGet(t *testing.T) {
	s := New()
	mustCreate(t, s, alice, "task_1", "write report")

	got, err := s.GetTask(context.Background(), alice, "task_1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "write report" {
		t.Errorf("Title = %q, want %q", got.Title, "write report")
	}
	if got.OwnerPrincipalID != alice.ID {
		t.Errorf("OwnerPrincipalID = %q, want %q", got.OwnerPrincipalID, alice.ID)
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	s := New()
	mustCreate(t, s, alice, "task_1", "first")

	err := s.CreateTask(context.Background(), alice, &api.Task{ID: "task_1", Title: "second"})
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestGet_OtherOwnerIsNotFound(t *testing.T) {
	s := New()
	mustCreate(t, s, bob, "task_bob", "bob's task")

	_, err := s.GetTask(context.Background(), alice, "task_bob")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGet_Missing(t *testing.T) {
	s := New()

	_, err := s.GetTask(context.Background(), alice, "task_missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList_ScopedToOwner(t *testing.T) {
	s := New()
	mustCreate(t, s, alice, "task_a1", "a one")
	mustCreate(t, s, alice, "task_a2", "a two")
	mustCreate(t, s, bob, "task_b1", "b one")

	tasks, err := s.ListTasks(context.Background(), alice)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.OwnerPrincipalID != alice.ID {
			t.Errorf("task %s owned by %q leaked into alice's list", task.ID, task.OwnerPrincipalID)
		}
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := New()
	old := &api.Task{ID: "task_old", Title: "old", CreatedAt: time.Now().Add(-time.Hour)}
	recent := &api.Task{ID: "task_new", Title: "new", CreatedAt: time.Now()}
	for _, task := range []*api.Task{old, recent} {
		if err := s.CreateTask(context.Background(), alice, task); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}

	tasks, err := s.ListTasks(context.Background(), alice)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if tasks[0].ID != "task_new" || tasks[1].ID != "task_old" {
		t.Errorf("order = [%s, %s], want [task_new, task_old]", tasks[0].ID, tasks[1].ID)
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	s := New()
	mustCreate(t, s, alice, "task_1", "original")

	completed := true
	got, err := s.UpdateTask(context.Background(), alice, "task_1", &api.UpdateTaskRequest{Completed: &completed})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !got.Completed {
		t.Error("Completed = false, want true")
	}
	if got.Title != "original" {
		t.Errorf("Title = %q, patch without title must not change it", got.Title)
	}
}

func TestUpdate_OtherOwnerIsNotFound(t *testing.T) {
	s := New()
	mustCreate(t, s, bob, "task_bob", "bob's task")

	title := "hijacked"
	_, err := s.UpdateTask(context.Background(), alice, "task_bob", &api.UpdateTaskRequest{Title: &title})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	got, err := s.GetTask(context.Background(), bob, "task_bob")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "bob's task" {
		t.Errorf("Title = %q, cross-owner update must not modify the task", got.Title)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	mustCreate(t, s, alice, "task_1", "doomed")

	if err := s.DeleteTask(context.Background(), alice, "task_1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := s.GetTask(context.Background(), alice, "task_1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err after delete = %v, want ErrNotFound", err)
	}
}

func TestDelete_OtherOwnerIsNotFound(t *testing.T) {
	s := New()
	mustCreate(t, s, bob, "task_bob", "bob's task")

	if err := s.DeleteTask(context.Background(), alice, "task_bob"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetTask(context.Background(), bob, "task_bob"); err != nil {
		t.Errorf("cross-owner delete removed bob's task: %v", err)
	}
}

func TestExists_IgnoresOwner(t *testing.T) {
	s := New()
	mustCreate(t, s, bob, "task_bob", "bob's task")

	ok, err := s.Exists(context.Background(), "task_bob")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("Exists = false for a task owned by another principal, want true")
	}

	ok, err = s.Exists(context.Background(), "task_missing")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("Exists = true for a missing task, want false")
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := New()
	mustCreate(t, s, alice, "task_1", "original")

	got, err := s.GetTask(context.Background(), alice, "task_1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	got.Title = "mutated"

	again, err := s.GetTask(context.Background(), alice, "task_1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if again.Title != "original" {
		t.Errorf("Title = %q, mutating a returned task must not affect the store", again.Title)
	}
}
