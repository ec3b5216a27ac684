package api

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestCreateTaskRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateTaskRequest
		wantParam string
	}{
		{"valid", CreateTaskRequest{Title: "write report"}, ""},
		{"valid with description", CreateTaskRequest{Title: "t", Description: "d"}, ""},
		{"empty title", CreateTaskRequest{}, "title"},
		{"whitespace title", CreateTaskRequest{Title: "   "}, "title"},
		{"title at limit", CreateTaskRequest{Title: strings.Repeat("x", 200)}, ""},
		{"title over limit", CreateTaskRequest{Title: strings.Repeat("x", 201)}, "title"},
		{"description at limit", CreateTaskRequest{Title: "t", Description: strings.Repeat("x", 2000)}, ""},
		{"description over limit", CreateTaskRequest{Title: "t", Description: strings.Repeat("x", 2001)}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if err.Param != tt.wantParam {
				t.Errorf("param = %q, want %q", err.Param, tt.wantParam)
			}
			if err.Type != ErrorTypeInvalidRequest {
				t.Errorf("type = %q, want invalid_request", err.Type)
			}
		})
	}
}

func TestUpdateTaskRequestValidate(t *testing.T) {
	completed := true

	tests := []struct {
		name    string
		req     UpdateTaskRequest
		wantErr bool
	}{
		{"title only", UpdateTaskRequest{Title: strPtr("new title")}, false},
		{"completed only", UpdateTaskRequest{Completed: &completed}, false},
		{"no fields", UpdateTaskRequest{}, true},
		{"empty title", UpdateTaskRequest{Title: strPtr("")}, true},
		{"whitespace title", UpdateTaskRequest{Title: strPtr("  ")}, true},
		{"title over limit", UpdateTaskRequest{Title: strPtr(strings.Repeat("x", 201))}, true},
		{"description over limit", UpdateTaskRequest{Description: strPtr(strings.Repeat("x", 2001))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTaskID(t *testing.T) {
	id := NewTaskID()
	if !strings.HasPrefix(id, "task_") {
		t.Errorf("NewTaskID() = %q, want task_ prefix", id)
	}
	if NewTaskID() == id {
		t.Error("NewTaskID() returned the same ID twice")
	}
}
