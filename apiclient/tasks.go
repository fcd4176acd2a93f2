package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kbukum/flowcheck/validation"
)

// TaskPayload is the wire representation of a task create request.
type TaskPayload struct {
	ProjectID string          `json:"project_id" validate:"required,uuid"`
	SprintID  string          `json:"sprint_id,omitempty" validate:"omitempty,uuid"`
	Title     string          `json:"title" validate:"required,max=500"`
	Status    string          `json:"status" validate:"required,oneof=todo in_progress review done canceled"`
	Priority  int             `json:"priority" validate:"min=0,max=5"`
	Labels    []string        `json:"labels,omitempty"`
	Checklist []ChecklistItem `json:"checklist,omitempty"`
}

// TaskUpdate is the wire representation of a task patch. Nil fields are
// left unchanged by the API.
type TaskUpdate struct {
	Title    *string   `json:"title,omitempty" validate:"omitempty,max=500"`
	Status   *string   `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress review done canceled"`
	Priority *int      `json:"priority,omitempty" validate:"omitempty,min=0,max=5"`
	Labels   *[]string `json:"labels,omitempty"`
}

// ChecklistItem is one entry of a task checklist.
type ChecklistItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// TaskDTO is the wire representation of a task returned by the API.
type TaskDTO struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	SprintID    string          `json:"sprint_id,omitempty"`
	Title       string          `json:"title"`
	Status      string          `json:"status"`
	Priority    int             `json:"priority"`
	Labels      []string        `json:"labels"`
	Checklist   []ChecklistItem `json:"checklist,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TaskResult is a task API response with its decoded body. Task is nil
// when the response had no body or the body did not decode; callers can
// distinguish the two via RawBody.
type TaskResult struct {
	StatusCode int
	Task       *TaskDTO
	RawBody    []byte
}

// TasksResult is a task list response with its decoded body.
type TasksResult struct {
	StatusCode int
	Tasks      []TaskDTO
	RawBody    []byte
}

// CreateTask creates a task via POST /tasks. The payload is validated
// client-side before sending.
func (c *Client) CreateTask(ctx context.Context, payload TaskPayload) (*TaskResult, error) {
	if err := validation.Validate(payload); err != nil {
		return nil, err
	}

	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/tasks",
		Body:   payload,
	})
	if err != nil {
		return nil, err
	}
	return taskResult(resp), nil
}

// GetTask reads a task via GET /tasks/{id}.
func (c *Client) GetTask(ctx context.Context, id string) (*TaskResult, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/tasks/" + id,
	})
	if err != nil {
		return nil, err
	}
	return taskResult(resp), nil
}

// UpdateTask patches a task via PATCH /tasks/{id}.
func (c *Client) UpdateTask(ctx context.Context, id string, update TaskUpdate) (*TaskResult, error) {
	if err := validation.Validate(update); err != nil {
		return nil, err
	}

	resp, err := c.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/tasks/" + id,
		Body:   update,
	})
	if err != nil {
		return nil, err
	}
	return taskResult(resp), nil
}

// DeleteTask deletes a task via DELETE /tasks/{id}.
func (c *Client) DeleteTask(ctx context.Context, id string) (*Response, error) {
	return c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/tasks/" + id,
	})
}

// ListTasks lists tasks via GET /tasks with optional query filters.
func (c *Client) ListTasks(ctx context.Context, query map[string]string) (*TasksResult, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/tasks",
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	result := &TasksResult{StatusCode: resp.StatusCode, RawBody: resp.Body}
	if len(resp.Body) > 0 {
		var tasks []TaskDTO
		if err := json.Unmarshal(resp.Body, &tasks); err == nil {
			result.Tasks = tasks
		}
	}
	return result, nil
}

func taskResult(resp *Response) *TaskResult {
	result := &TaskResult{StatusCode: resp.StatusCode, RawBody: resp.Body}
	if len(resp.Body) > 0 {
		var task TaskDTO
		if err := json.Unmarshal(resp.Body, &task); err == nil {
			result.Task = &task
		}
	}
	return result
}
