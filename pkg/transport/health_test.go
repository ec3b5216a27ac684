package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthz(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHealth(mux, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestReadyz_AllChecksPass(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHealth(mux, []ReadyCheck{
		{Name: "sessions", Check: func(ctx context.Context) error { return nil }},
		{Name: "tasks", Check: func(ctx context.Context) error { return nil }},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestReadyz_FailingCheck(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHealth(mux, []ReadyCheck{
		{Name: "sessions", Check: func(ctx context.Context) error { return nil }},
		{Name: "ratelimit", Check: func(ctx context.Context) error { return errors.New("connection refused") }},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["failed"] != "ratelimit" {
		t.Errorf("failed = %q, want ratelimit", body["failed"])
	}
}
