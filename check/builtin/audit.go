package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/store"
)

// AuditTrail verifies the audit log against the tasks it describes: every
// entry must reference a known task, carry a recognized action and a JSON
// payload, and sit consistently inside the task's lifecycle. Reference and
// action violations are critical, payload and chronology issues are warnings.
type AuditTrail struct{}

// NewAuditTrail creates the audit trail check.
func NewAuditTrail() AuditTrail { return AuditTrail{} }

// Name returns the check identifier.
func (AuditTrail) Name() string { return NameAuditTrail }

// Validate runs four probes over the full audit log. Soft-deleted tasks
// still anchor their entries, so task lookup ignores the run filter and
// includes deleted rows.
func (AuditTrail) Validate(ctx context.Context, target check.Target) (*check.Outcome, error) {
	logs, err := target.Store.AuditLogs(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := target.Store.TasksAll(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}

	byTask := make(map[uuid.UUID]store.Task, len(tasks))
	for _, t := range tasks {
		byTask[t.ID] = t
	}

	r := check.NewRecorder(NameAuditTrail)
	r.Record(entryReferences(logs, byTask)...)
	r.Record(entryActions(logs)...)
	r.Record(entryPayloads(logs)...)
	r.Record(entryChronology(logs, byTask)...)
	return r.Outcome(), nil
}

func entryReferences(logs []store.AuditLog, tasks map[uuid.UUID]store.Task) []check.Finding {
	var findings []check.Finding
	for _, l := range logs {
		if _, ok := tasks[l.TaskID]; !ok {
			findings = append(findings, check.Finding{
				Category:    check.CategoryForeignKey,
				Severity:    check.SeverityCritical,
				Table:       "audit_logs",
				Field:       "task_id",
				RecordID:    l.ID.String(),
				Description: fmt.Sprintf("audit entry references missing task %s", l.TaskID),
			})
		}
	}
	return findings
}

func entryActions(logs []store.AuditLog) []check.Finding {
	var findings []check.Finding
	for _, l := range logs {
		if !store.ValidAuditAction(l.Action) {
			findings = append(findings, check.Finding{
				Category:    check.CategoryAuditTrail,
				Severity:    check.SeverityCritical,
				Table:       "audit_logs",
				Field:       "action",
				RecordID:    l.ID.String(),
				Description: fmt.Sprintf("unknown audit action %q", l.Action),
			})
		}
	}
	return findings
}

func entryPayloads(logs []store.AuditLog) []check.Finding {
	var findings []check.Finding
	for _, l := range logs {
		var payload map[string]json.RawMessage
		if json.Unmarshal([]byte(l.Payload), &payload) != nil {
			findings = append(findings, check.Finding{
				Category:    check.CategoryMalformedStructure,
				Severity:    check.SeverityWarning,
				Table:       "audit_logs",
				Field:       "payload",
				RecordID:    l.ID.String(),
				Description: "audit payload does not parse as a JSON object",
			})
		}
	}
	return findings
}

// entryChronology walks each task's entries in log order. The plain
// non-decreasing property is guaranteed by the read ordering, so the probe
// checks the anchors instead: nothing before the created entry, nothing
// after the deleted entry, nothing before the task record itself existed.
func entryChronology(logs []store.AuditLog, tasks map[uuid.UUID]store.Task) []check.Finding {
	groups := make(map[uuid.UUID][]store.AuditLog)
	var order []uuid.UUID
	for _, l := range logs {
		if _, seen := groups[l.TaskID]; !seen {
			order = append(order, l.TaskID)
		}
		groups[l.TaskID] = append(groups[l.TaskID], l)
	}

	var findings []check.Finding
	for _, taskID := range order {
		task, ok := tasks[taskID]
		if !ok {
			// Orphan entries are the reference probe's problem.
			continue
		}
		entries := groups[taskID]

		var createdAt, deletedAt *time.Time
		for _, e := range entries {
			switch e.Action {
			case store.AuditActionCreated:
				if createdAt == nil {
					at := e.CreatedAt
					createdAt = &at
				}
			case store.AuditActionDeleted:
				if deletedAt == nil {
					at := e.CreatedAt
					deletedAt = &at
				}
			}
		}

		for _, e := range entries {
			switch {
			case e.CreatedAt.Before(task.CreatedAt):
				findings = append(findings, chronologyFinding(e, "audit entry predates the task it describes"))
			case createdAt != nil && e.CreatedAt.Before(*createdAt):
				findings = append(findings, chronologyFinding(e, "audit entry precedes the task's created entry"))
			case deletedAt != nil && e.CreatedAt.After(*deletedAt):
				findings = append(findings, chronologyFinding(e, "audit entry follows the task's deleted entry"))
			}
		}
	}
	return findings
}

func chronologyFinding(e store.AuditLog, description string) check.Finding {
	return check.Finding{
		Category:    check.CategoryAuditTrail,
		Severity:    check.SeverityWarning,
		Table:       "audit_logs",
		Field:       "created_at",
		RecordID:    e.ID.String(),
		Description: description,
	}
}
