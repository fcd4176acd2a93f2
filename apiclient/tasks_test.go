package apiclient

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/flowcheck/errors"
)

func taskServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/tasks":
			var payload TaskPayload
			_ = json.NewDecoder(r.Body).Decode(&payload)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(201)
			_ = json.NewEncoder(w).Encode(TaskDTO{
				ID:        uuid.New().String(),
				ProjectID: payload.ProjectID,
				Title:     payload.Title,
				Status:    payload.Status,
				Priority:  payload.Priority,
				Labels:    payload.Labels,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			})
		case r.Method == http.MethodGet && r.URL.Path == "/tasks":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]TaskDTO{
				{ID: uuid.New().String(), Title: "first", Status: "todo"},
				{ID: uuid.New().String(), Title: "second", Status: "done"},
			})
		case r.Method == http.MethodDelete:
			w.WriteHeader(204)
		default:
			w.WriteHeader(404)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return srv, c
}

func TestCreateTask(t *testing.T) {
	_, c := taskServer(t)

	result, err := c.CreateTask(context.Background(), TaskPayload{
		ProjectID: uuid.New().String(),
		Title:     "probe task",
		Status:    "todo",
		Priority:  2,
		Labels:    []string{"backend"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StatusCode != 201 {
		t.Errorf("expected 201, got %d", result.StatusCode)
	}
	if result.Task == nil {
		t.Fatal("expected decoded task")
	}
	if result.Task.Title != "probe task" {
		t.Errorf("expected title echo, got %q", result.Task.Title)
	}
	if result.Task.ID == "" {
		t.Error("expected server-assigned id")
	}
}

func TestCreateTaskRejectsInvalidPayload(t *testing.T) {
	_, c := taskServer(t)

	_, err := c.CreateTask(context.Background(), TaskPayload{
		ProjectID: "not-a-uuid",
		Title:     "probe",
		Status:    "todo",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
}

func TestCreateTaskRejectsUnknownStatus(t *testing.T) {
	_, c := taskServer(t)

	_, err := c.CreateTask(context.Background(), TaskPayload{
		ProjectID: uuid.New().String(),
		Title:     "probe",
		Status:    "shipped",
	})
	if err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}

func TestGetTaskNotFound(t *testing.T) {
	_, c := taskServer(t)

	result, err := c.GetTask(context.Background(), uuid.New().String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StatusCode != 404 {
		t.Errorf("expected 404, got %d", result.StatusCode)
	}
}

func TestGetTaskUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := c.GetTask(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Task != nil {
		t.Error("expected nil task for undecodable body")
	}
	if len(result.RawBody) == 0 {
		t.Error("expected raw body to be preserved")
	}
}

func TestUpdateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		var update TaskUpdate
		_ = json.NewDecoder(r.Body).Decode(&update)
		if update.Status == nil || *update.Status != "in_progress" {
			t.Error("expected status in_progress in patch body")
		}
		if update.Title != nil {
			t.Error("unset fields must not appear in the patch body")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TaskDTO{ID: "t1", Status: *update.Status})
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := "in_progress"
	result, err := c.UpdateTask(context.Background(), "t1", TaskUpdate{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Task == nil || result.Task.Status != "in_progress" {
		t.Errorf("expected updated status echo, got %+v", result.Task)
	}
}

func TestDeleteTask(t *testing.T) {
	_, c := taskServer(t)

	resp, err := c.DeleteTask(context.Background(), uuid.New().String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 204 {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
}

func TestListTasks(t *testing.T) {
	_, c := taskServer(t)

	result, err := c.ListTasks(context.Background(), map[string]string{"project_id": "p1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StatusCode != 200 {
		t.Errorf("expected 200, got %d", result.StatusCode)
	}
	if len(result.Tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(result.Tasks))
	}
}
