package integration

import (
	"net/http"
	"testing"

	"github.com/taskgate/taskgate/pkg/api"
)

func TestTaskLifecycle(t *testing.T) {
	id := createTask(t, tokenAlice, "integration lifecycle")

	resp := doRequest(t, http.MethodGet, "/v1/tasks/"+id, tokenAlice, "")
	var task api.Task
	decodeJSON(t, resp, &task)
	resp.Body.Close()
	if task.Title != "integration lifecycle" {
		t.Errorf("Title = %q", task.Title)
	}

	resp = doRequest(t, http.MethodPatch, "/v1/tasks/"+id, tokenAlice, `{"completed":true}`)
	decodeJSON(t, resp, &task)
	resp.Body.Close()
	if !task.Completed {
		t.Error("Completed = false after patch")
	}

	resp = doRequest(t, http.MethodDelete, "/v1/tasks/"+id, tokenAlice, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, "/v1/tasks/"+id, tokenAlice, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", resp.StatusCode)
	}
}

// TestCrossPrincipalIsolation walks the ownership boundary end to end:
// a task created by one principal is invisible to another through every
// operation, indistinguishable from a task that never existed.
func TestCrossPrincipalIsolation(t *testing.T) {
	id := createTask(t, tokenBob, "bob's private task")

	for _, op := range []struct {
		method string
		body   string
	}{
		{http.MethodGet, ""},
		{http.MethodPatch, `{"title":"hijacked"}`},
		{http.MethodDelete, ""},
	} {
		resp := doRequest(t, op.method, "/v1/tasks/"+id, tokenAlice, op.body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s as alice: status = %d, want 404", op.method, resp.StatusCode)
		}
	}

	// Bob still sees his task untouched.
	resp := doRequest(t, http.MethodGet, "/v1/tasks/"+id, tokenBob, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status as bob = %d, want 200", resp.StatusCode)
	}
	var task api.Task
	decodeJSON(t, resp, &task)
	if task.Title != "bob's private task" {
		t.Errorf("Title = %q, cross-principal requests must not modify the task", task.Title)
	}
}

func TestListScopedToCaller(t *testing.T) {
	id := createTask(t, tokenBob, "only in bob's list")

	resp := doRequest(t, http.MethodGet, "/v1/tasks", tokenAlice, "")
	defer resp.Body.Close()
	var list api.TaskList
	decodeJSON(t, resp, &list)

	for _, task := range list.Data {
		if task.ID == id {
			t.Errorf("bob's task %s appeared in alice's list", id)
		}
	}
}

func TestInvalidBody(t *testing.T) {
	resp := doRequest(t, http.MethodPost, "/v1/tasks", tokenAlice, `{"title":""}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body api.ErrorResponse
	decodeJSON(t, resp, &body)
	if body.Error.Param != "title" {
		t.Errorf("param = %q, want title", body.Error.Param)
	}
}
