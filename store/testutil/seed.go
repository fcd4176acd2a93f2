package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/flowcheck/store"
	"github.com/kbukum/flowcheck/util"
)

// SeedProject creates a project through the model hooks.
func SeedProject(t *testing.T, s *store.Store, name, status string) store.Project {
	t.Helper()
	p := store.Project{Name: name, Status: status}
	if err := s.DB().Create(&p).Error; err != nil {
		t.Fatalf("failed to seed project %q: %v", name, err)
	}
	return p
}

// SeedSprint creates a sprint under a project. The window opens at call
// time so it always falls inside the project's lifetime.
func SeedSprint(t *testing.T, s *store.Store, projectID uuid.UUID, name, status string) store.Sprint {
	t.Helper()
	now := time.Now()
	sp := store.Sprint{
		ProjectID: projectID,
		Name:      name,
		Status:    status,
		StartsAt:  util.Ptr(now),
		EndsAt:    util.Ptr(now.Add(14 * 24 * time.Hour)),
	}
	if err := s.DB().Create(&sp).Error; err != nil {
		t.Fatalf("failed to seed sprint %q: %v", name, err)
	}
	return sp
}

// SeedTask creates a task under a project. sprintID may be nil for a
// backlog task.
func SeedTask(t *testing.T, s *store.Store, projectID uuid.UUID, sprintID *uuid.UUID, title, status string) store.Task {
	t.Helper()
	task := store.Task{
		ProjectID: projectID,
		SprintID:  sprintID,
		Title:     title,
		Status:    status,
		Priority:  2,
		Labels:    `["backend"]`,
		Checklist: `[]`,
	}
	if status == store.TaskStatusDone {
		task.CompletedAt = util.Ptr(time.Now())
	}
	if err := s.DB().Create(&task).Error; err != nil {
		t.Fatalf("failed to seed task %q: %v", title, err)
	}
	return task
}

// SeedAuditLog creates an audit entry for a task at the given time.
func SeedAuditLog(t *testing.T, s *store.Store, taskID uuid.UUID, action string, at time.Time) store.AuditLog {
	t.Helper()
	entry := store.AuditLog{
		TaskID:    taskID,
		Action:    action,
		Payload:   `{"source":"test"}`,
		CreatedAt: at,
	}
	if err := s.DB().Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed audit entry: %v", err)
	}
	return entry
}

// Workspace is a healthy baseline of related tracker records.
type Workspace struct {
	Project store.Project
	Sprint  store.Sprint
	Tasks   []store.Task
}

// SeedWorkspace creates one active project with one active sprint and a
// handful of tasks in assorted statuses, with matching audit entries.
// Every record is internally consistent so integrity checks pass on it.
func SeedWorkspace(t *testing.T, s *store.Store) Workspace {
	t.Helper()

	project := SeedProject(t, s, "Tracker", store.ProjectStatusActive)
	sprint := SeedSprint(t, s, project.ID, "Sprint 1", store.SprintStatusActive)

	tasks := []store.Task{
		SeedTask(t, s, project.ID, util.Ptr(sprint.ID), "Design schema", store.TaskStatusDone),
		SeedTask(t, s, project.ID, util.Ptr(sprint.ID), "Implement API", store.TaskStatusInProgress),
		SeedTask(t, s, project.ID, nil, "Write docs", store.TaskStatusTodo),
	}

	// Audit times sit after the task rows themselves so the trail reads as
	// a plausible history.
	base := time.Now()
	for i, task := range tasks {
		SeedAuditLog(t, s, task.ID, store.AuditActionCreated, base.Add(time.Duration(i)*time.Minute))
	}
	SeedAuditLog(t, s, tasks[0].ID, store.AuditActionStatusChanged, base.Add(30*time.Minute))

	return Workspace{Project: project, Sprint: sprint, Tasks: tasks}
}
