package builtin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kbukum/flowcheck/apiclient"
	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/store"
	"github.com/kbukum/flowcheck/util"
)

// CRUDBehavior drives one full task lifecycle through the API and
// verifies the contract at each step: create 201 with a faithful echo,
// read 200, update 200 reflecting the change, delete 204, and 404 on
// read-after-delete. The probe task is removed again by the cycle itself.
type CRUDBehavior struct{}

// NewCRUDBehavior creates the CRUD behavior check.
func NewCRUDBehavior() CRUDBehavior { return CRUDBehavior{} }

// Name returns the check identifier.
func (CRUDBehavior) Name() string { return NameCRUDBehavior }

// Validate runs the CRUD cycle. Steps whose preconditions failed are not
// probed; a transport failure is a fault and aborts the check.
func (CRUDBehavior) Validate(ctx context.Context, target check.Target) (*check.Outcome, error) {
	r := check.NewRecorder(NameCRUDBehavior)

	projectID, finding, err := probeProject(ctx, target)
	if err != nil {
		return nil, err
	}
	if finding != nil {
		r.Record(*finding)
		return r.Outcome(), nil
	}

	// Create.
	payload := apiclient.TaskPayload{
		ProjectID: projectID,
		Title:     "crud behavior probe",
		Status:    store.TaskStatusTodo,
		Priority:  1,
		Labels:    []string{"flowcheck-probe"},
	}
	created, err := target.API.CreateTask(ctx, payload)
	if err != nil {
		return nil, err
	}
	r.Record(createFindings(created, payload)...)
	if created.StatusCode != http.StatusCreated || created.Task == nil || created.Task.ID == "" {
		return r.Outcome(), nil
	}
	id := created.Task.ID

	// Read.
	read, err := target.API.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Record(readFindings(read, id, payload.Title)...)

	// Update.
	updatedTitle := "crud behavior probe updated"
	updated, err := target.API.UpdateTask(ctx, id, apiclient.TaskUpdate{Title: util.Ptr(updatedTitle)})
	if err != nil {
		return nil, err
	}
	r.Record(updateFindings(updated, updatedTitle)...)

	// Delete.
	deleted, err := target.API.DeleteTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if deleted.StatusCode != http.StatusNoContent {
		r.Record(check.Finding{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			RecordID:    id,
			Description: fmt.Sprintf("delete returned status %d, expected 204", deleted.StatusCode),
		})
		return r.Outcome(), nil
	}
	r.Record()

	// Read after delete.
	gone, err := target.API.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if gone.StatusCode != http.StatusNotFound {
		r.Record(check.Finding{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			RecordID:    id,
			Description: fmt.Sprintf("read after delete returned status %d, expected 404", gone.StatusCode),
		})
	} else {
		r.Record()
	}

	return r.Outcome(), nil
}

func createFindings(result *apiclient.TaskResult, sent apiclient.TaskPayload) []check.Finding {
	if result.StatusCode != http.StatusCreated {
		return []check.Finding{{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			Description: fmt.Sprintf("create returned status %d, expected 201", result.StatusCode),
		}}
	}
	if result.Task == nil {
		return []check.Finding{{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			Description: "create response body does not decode as a task",
		}}
	}

	var findings []check.Finding
	task := result.Task
	if task.ID == "" {
		findings = append(findings, check.Finding{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			Description: "create response carries no task id",
		})
	}
	if task.Title != sent.Title || task.Status != sent.Status || task.ProjectID != sent.ProjectID {
		findings = append(findings, check.Finding{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			RecordID:    task.ID,
			Description: "create response does not echo the sent fields",
		})
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		findings = append(findings, check.Finding{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityWarning,
			Table:       "tasks",
			RecordID:    task.ID,
			Description: "create response is missing record timestamps",
		})
	}
	return findings
}

func readFindings(result *apiclient.TaskResult, id, title string) []check.Finding {
	if result.StatusCode != http.StatusOK {
		return []check.Finding{{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			RecordID:    id,
			Description: fmt.Sprintf("read returned status %d, expected 200", result.StatusCode),
		}}
	}
	if result.Task == nil {
		return []check.Finding{{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			RecordID:    id,
			Description: "read response body does not decode as a task",
		}}
	}
	if result.Task.ID != id || result.Task.Title != title {
		return []check.Finding{{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			RecordID:    id,
			Description: "read response does not match the created task",
		}}
	}
	return nil
}

func updateFindings(result *apiclient.TaskResult, wantTitle string) []check.Finding {
	if result.StatusCode != http.StatusOK {
		return []check.Finding{{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			Description: fmt.Sprintf("update returned status %d, expected 200", result.StatusCode),
		}}
	}
	if result.Task == nil || result.Task.Title != wantTitle {
		return []check.Finding{{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityCritical,
			Table:       "tasks",
			Description: "update response does not reflect the requested change",
		}}
	}
	return nil
}
