package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/kbukum/flowcheck/apiclient"
	"github.com/kbukum/flowcheck/store"
	storetest "github.com/kbukum/flowcheck/store/testutil"
	"github.com/kbukum/flowcheck/util"
)

func TestFakeAPICRUDCycle(t *testing.T) {
	s := storetest.MustOpen(t)
	ws := storetest.SeedWorkspace(t, s)
	api := New(t, s)
	client := api.Client(t)
	ctx := context.Background()

	// Create.
	created, err := client.CreateTask(ctx, apiclient.TaskPayload{
		ProjectID: ws.Project.ID.String(),
		Title:     "probe task",
		Status:    store.TaskStatusTodo,
		Priority:  1,
		Labels:    []string{"probe"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.StatusCode)
	}
	if created.Task == nil || created.Task.Title != "probe task" {
		t.Fatalf("expected title echo, got %+v", created.Task)
	}
	id := created.Task.ID

	// Read.
	read, err := client.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if read.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", read.StatusCode)
	}
	if read.Task == nil || len(read.Task.Labels) != 1 || read.Task.Labels[0] != "probe" {
		t.Errorf("expected labels round-trip, got %+v", read.Task)
	}

	// Update.
	updated, err := client.UpdateTask(ctx, id, apiclient.TaskUpdate{Title: util.Ptr("probe task v2")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", updated.StatusCode)
	}
	if updated.Task == nil || updated.Task.Title != "probe task v2" {
		t.Errorf("expected updated title, got %+v", updated.Task)
	}

	// Delete, then read again.
	deleted, err := client.DeleteTask(ctx, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", deleted.StatusCode)
	}

	gone, err := client.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("read after delete: %v", err)
	}
	if gone.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", gone.StatusCode)
	}
}

func TestFakeAPIWritesAuditTrail(t *testing.T) {
	s := storetest.MustOpen(t)
	ws := storetest.SeedWorkspace(t, s)
	api := New(t, s)
	client := api.Client(t)
	ctx := context.Background()

	before, err := s.AuditLogs(ctx)
	if err != nil {
		t.Fatal(err)
	}

	created, err := client.CreateTask(ctx, apiclient.TaskPayload{
		ProjectID: ws.Project.ID.String(),
		Title:     "audited",
		Status:    store.TaskStatusTodo,
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.Task == nil {
		t.Fatalf("expected created task, got status %d", created.StatusCode)
	}
	if _, err := client.UpdateTask(ctx, created.Task.ID, apiclient.TaskUpdate{Status: util.Ptr(store.TaskStatusInProgress)}); err != nil {
		t.Fatal(err)
	}
	if _, err := client.DeleteTask(ctx, created.Task.ID); err != nil {
		t.Fatal(err)
	}

	after, err := s.AuditLogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(after) - len(before); got != 3 {
		t.Fatalf("expected 3 new audit entries, got %d", got)
	}

	actions := []string{
		after[len(after)-3].Action,
		after[len(after)-2].Action,
		after[len(after)-1].Action,
	}
	want := []string{store.AuditActionCreated, store.AuditActionStatusChanged, store.AuditActionDeleted}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("audit action[%d] = %s, want %s", i, actions[i], want[i])
		}
	}
}

func TestFakeAPIEnforcesTransitions(t *testing.T) {
	s := storetest.MustOpen(t)
	ws := storetest.SeedWorkspace(t, s)
	api := New(t, s)
	client := api.Client(t)
	ctx := context.Background()

	created, err := client.CreateTask(ctx, apiclient.TaskPayload{
		ProjectID: ws.Project.ID.String(),
		Title:     "transition probe",
		Status:    store.TaskStatusTodo,
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.Task == nil {
		t.Fatalf("expected created task, got status %d", created.StatusCode)
	}
	id := created.Task.ID

	// Legal: todo -> in_progress.
	legal, err := client.UpdateTask(ctx, id, apiclient.TaskUpdate{Status: util.Ptr(store.TaskStatusInProgress)})
	if err != nil {
		t.Fatal(err)
	}
	if legal.StatusCode != http.StatusOK {
		t.Errorf("legal transition should return 200, got %d", legal.StatusCode)
	}

	// Illegal: in_progress -> todo.
	illegal, err := client.UpdateTask(ctx, id, apiclient.TaskUpdate{Status: util.Ptr(store.TaskStatusTodo)})
	if err != nil {
		t.Fatal(err)
	}
	if illegal.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("illegal transition should return 422, got %d", illegal.StatusCode)
	}

	// With enforcement disabled the same transition is accepted.
	api.AllowIllegalTransitions(true)
	accepted, err := client.UpdateTask(ctx, id, apiclient.TaskUpdate{Status: util.Ptr(store.TaskStatusTodo)})
	if err != nil {
		t.Fatal(err)
	}
	if accepted.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with enforcement disabled, got %d", accepted.StatusCode)
	}
}

func TestFakeAPICompletedAtOnDone(t *testing.T) {
	s := storetest.MustOpen(t)
	ws := storetest.SeedWorkspace(t, s)
	api := New(t, s)
	client := api.Client(t)
	ctx := context.Background()

	created, err := client.CreateTask(ctx, apiclient.TaskPayload{
		ProjectID: ws.Project.ID.String(),
		Title:     "finishing",
		Status:    store.TaskStatusTodo,
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.Task == nil {
		t.Fatalf("expected created task, got status %d", created.StatusCode)
	}
	id := created.Task.ID

	for _, status := range []string{store.TaskStatusInProgress, store.TaskStatusDone} {
		if _, err := client.UpdateTask(ctx, id, apiclient.TaskUpdate{Status: util.Ptr(status)}); err != nil {
			t.Fatal(err)
		}
	}

	read, err := client.GetTask(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if read.Task == nil || read.Task.CompletedAt == nil {
		t.Error("expected completed_at to be set when task reaches done")
	}
}

func TestFakeAPIRejectsUnknownProject(t *testing.T) {
	s := storetest.MustOpen(t)
	api := New(t, s)
	client := api.Client(t)

	result, err := client.CreateTask(context.Background(), apiclient.TaskPayload{
		ProjectID: "8f14e45f-ceea-4e47-a25b-07fcd7b7e001",
		Title:     "orphan probe",
		Status:    store.TaskStatusTodo,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for unknown project, got %d", result.StatusCode)
	}
}

func TestFakeAPIForceStatus(t *testing.T) {
	s := storetest.MustOpen(t)
	ws := storetest.SeedWorkspace(t, s)
	api := New(t, s)
	client := api.Client(t)

	api.ForceStatus(OpCreate, http.StatusInternalServerError)

	result, err := client.CreateTask(context.Background(), apiclient.TaskPayload{
		ProjectID: ws.Project.ID.String(),
		Title:     "doomed",
		Status:    store.TaskStatusTodo,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected forced 500, got %d", result.StatusCode)
	}

	api.ClearForced()
	ok, err := client.CreateTask(context.Background(), apiclient.TaskPayload{
		ProjectID: ws.Project.ID.String(),
		Title:     "revived",
		Status:    store.TaskStatusTodo,
	})
	if err != nil {
		t.Fatal(err)
	}
	if ok.StatusCode != http.StatusCreated {
		t.Errorf("expected 201 after clearing, got %d", ok.StatusCode)
	}
}

func TestFakeAPILatency(t *testing.T) {
	s := storetest.MustOpen(t)
	storetest.SeedWorkspace(t, s)
	api := New(t, s)
	client := api.Client(t)

	api.SetLatency(30 * time.Millisecond)

	start := time.Now()
	if _, err := client.ListTasks(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("expected at least 30ms latency, took %v", elapsed)
	}
}

func TestFakeAPICorruptEcho(t *testing.T) {
	s := storetest.MustOpen(t)
	ws := storetest.SeedWorkspace(t, s)
	api := New(t, s)
	client := api.Client(t)

	api.CorruptEcho(true)

	result, err := client.CreateTask(context.Background(), apiclient.TaskPayload{
		ProjectID: ws.Project.ID.String(),
		Title:     "clean title",
		Status:    store.TaskStatusTodo,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Task == nil || result.Task.Title == "clean title" {
		t.Error("expected corrupted echo to differ from sent title")
	}
}
