package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/store"
)

// DataIntegrity verifies referential and structural invariants of the
// tracker store: foreign-key coverage, embedded JSON well-formedness,
// timestamp ordering, primary-key uniqueness, and soft-delete
// consistency. It is the root of the built-in suite.
type DataIntegrity struct{}

// NewDataIntegrity creates the data integrity check.
func NewDataIntegrity() DataIntegrity { return DataIntegrity{} }

// Name returns the check identifier.
func (DataIntegrity) Name() string { return NameDataIntegrity }

// Validate runs the integrity probes. Child records honor the filter;
// parent lookups read the full store.
func (DataIntegrity) Validate(ctx context.Context, target check.Target) (*check.Outcome, error) {
	projects, err := target.Store.Projects(ctx)
	if err != nil {
		return nil, err
	}
	allSprints, err := target.Store.Sprints(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	allTasks, err := target.Store.TasksAll(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}
	sprints, err := target.Store.Sprints(ctx, target.Filter)
	if err != nil {
		return nil, err
	}
	tasks, err := target.Store.Tasks(ctx, target.Filter)
	if err != nil {
		return nil, err
	}
	tasksAll, err := target.Store.TasksAll(ctx, target.Filter)
	if err != nil {
		return nil, err
	}
	audits, err := target.Store.AuditLogs(ctx)
	if err != nil {
		return nil, err
	}

	liveProjects := projectIDSet(projects)
	liveSprints := sprintIDSet(allSprints)
	knownTasks := taskIDSet(allTasks)

	r := check.NewRecorder(NameDataIntegrity)
	r.Record(taskProjectReferences(tasks, liveProjects)...)
	r.Record(taskSprintReferences(tasks, liveSprints)...)
	r.Record(sprintProjectReferences(sprints, liveProjects)...)
	r.Record(auditTaskReferences(audits, knownTasks)...)
	r.Record(labelStructures(tasks)...)
	r.Record(checklistStructures(tasks)...)
	r.Record(timestampOrder(projects, sprints, tasks)...)
	r.Record(completionTimestamps(tasks)...)
	r.Record(duplicateIDs(projects, allSprints, allTasks, audits)...)
	r.Record(softDeleteConsistency(tasksAll, liveSprints)...)
	return r.Outcome(), nil
}

func taskProjectReferences(tasks []store.Task, projects map[uuid.UUID]store.Project) []check.Finding {
	var findings []check.Finding
	for _, t := range tasks {
		if _, ok := projects[t.ProjectID]; !ok {
			findings = append(findings, check.Finding{
				Category:    check.CategoryForeignKey,
				Severity:    check.SeverityCritical,
				Table:       "tasks",
				Field:       "project_id",
				RecordID:    t.ID.String(),
				Description: fmt.Sprintf("task references project %s which does not exist or is deleted", t.ProjectID),
			})
		}
	}
	return findings
}

func taskSprintReferences(tasks []store.Task, sprints map[uuid.UUID]store.Sprint) []check.Finding {
	var findings []check.Finding
	for _, t := range tasks {
		if t.SprintID == nil {
			continue
		}
		if _, ok := sprints[*t.SprintID]; !ok {
			findings = append(findings, check.Finding{
				Category:    check.CategoryForeignKey,
				Severity:    check.SeverityCritical,
				Table:       "tasks",
				Field:       "sprint_id",
				RecordID:    t.ID.String(),
				Description: fmt.Sprintf("task references sprint %s which does not exist or is deleted", *t.SprintID),
			})
		}
	}
	return findings
}

func sprintProjectReferences(sprints []store.Sprint, projects map[uuid.UUID]store.Project) []check.Finding {
	var findings []check.Finding
	for _, s := range sprints {
		if _, ok := projects[s.ProjectID]; !ok {
			findings = append(findings, check.Finding{
				Category:    check.CategoryForeignKey,
				Severity:    check.SeverityCritical,
				Table:       "sprints",
				Field:       "project_id",
				RecordID:    s.ID.String(),
				Description: fmt.Sprintf("sprint references project %s which does not exist or is deleted", s.ProjectID),
			})
		}
	}
	return findings
}

func auditTaskReferences(audits []store.AuditLog, tasks map[uuid.UUID]struct{}) []check.Finding {
	var findings []check.Finding
	for _, a := range audits {
		if _, ok := tasks[a.TaskID]; !ok {
			findings = append(findings, check.Finding{
				Category:    check.CategoryForeignKey,
				Severity:    check.SeverityCritical,
				Table:       "audit_logs",
				Field:       "task_id",
				RecordID:    a.ID.String(),
				Description: fmt.Sprintf("audit entry references task %s which has never existed", a.TaskID),
			})
		}
	}
	return findings
}

func labelStructures(tasks []store.Task) []check.Finding {
	var findings []check.Finding
	for _, t := range tasks {
		if !parsesAsJSONArray(t.Labels) {
			findings = append(findings, check.Finding{
				Category:    check.CategoryMalformedStructure,
				Severity:    check.SeverityCritical,
				Table:       "tasks",
				Field:       "labels",
				RecordID:    t.ID.String(),
				Description: "labels column does not parse as a JSON array",
			})
		}
	}
	return findings
}

func checklistStructures(tasks []store.Task) []check.Finding {
	var findings []check.Finding
	for _, t := range tasks {
		// Checklist is optional; only a present, unparseable value is flagged.
		if t.Checklist != "" && !parsesAsJSONArray(t.Checklist) {
			findings = append(findings, check.Finding{
				Category:    check.CategoryMalformedStructure,
				Severity:    check.SeverityWarning,
				Table:       "tasks",
				Field:       "checklist",
				RecordID:    t.ID.String(),
				Description: "checklist column does not parse as a JSON array",
			})
		}
	}
	return findings
}

func timestampOrder(projects []store.Project, sprints []store.Sprint, tasks []store.Task) []check.Finding {
	var findings []check.Finding
	add := func(table, id string) {
		findings = append(findings, check.Finding{
			Category:    check.CategoryTimestamp,
			Severity:    check.SeverityCritical,
			Table:       table,
			Field:       "created_at",
			RecordID:    id,
			Description: "record was created after it was last updated",
		})
	}
	for _, p := range projects {
		if p.CreatedAt.After(p.UpdatedAt) {
			add("projects", p.ID.String())
		}
	}
	for _, s := range sprints {
		if s.CreatedAt.After(s.UpdatedAt) {
			add("sprints", s.ID.String())
		}
	}
	for _, t := range tasks {
		if t.CreatedAt.After(t.UpdatedAt) {
			add("tasks", t.ID.String())
		}
	}
	return findings
}

func completionTimestamps(tasks []store.Task) []check.Finding {
	var findings []check.Finding
	for _, t := range tasks {
		if t.Status == store.TaskStatusDone && t.CompletedAt == nil {
			findings = append(findings, check.Finding{
				Category:    check.CategoryTimestamp,
				Severity:    check.SeverityWarning,
				Table:       "tasks",
				Field:       "completed_at",
				RecordID:    t.ID.String(),
				Description: "done task has no completion timestamp",
			})
		}
	}
	return findings
}

// duplicateIDs flags repeated primary keys. Storage guarantees should make
// this impossible; a hit means the store itself is corrupt.
func duplicateIDs(projects []store.Project, sprints []store.Sprint, tasks []store.Task, audits []store.AuditLog) []check.Finding {
	var findings []check.Finding

	scan := func(table string, ids []uuid.UUID) {
		seen := make(map[uuid.UUID]int, len(ids))
		for _, id := range ids {
			seen[id]++
		}
		reported := make(map[uuid.UUID]bool)
		for _, id := range ids {
			if seen[id] > 1 && !reported[id] {
				reported[id] = true
				findings = append(findings, check.Finding{
					Category:    check.CategoryDuplicateKey,
					Severity:    check.SeverityCritical,
					Table:       table,
					Field:       "id",
					RecordID:    id.String(),
					Description: fmt.Sprintf("primary key appears %d times", seen[id]),
				})
			}
		}
	}

	projectIDs := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}
	sprintIDs := make([]uuid.UUID, 0, len(sprints))
	for _, s := range sprints {
		sprintIDs = append(sprintIDs, s.ID)
	}
	taskIDs := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
	}
	auditIDs := make([]uuid.UUID, 0, len(audits))
	for _, a := range audits {
		auditIDs = append(auditIDs, a.ID)
	}

	scan("projects", projectIDs)
	scan("sprints", sprintIDs)
	scan("tasks", taskIDs)
	scan("audit_logs", auditIDs)
	return findings
}

func softDeleteConsistency(tasks []store.Task, sprints map[uuid.UUID]store.Sprint) []check.Finding {
	var findings []check.Finding
	for _, t := range tasks {
		if !t.DeletedAt.Valid || t.SprintID == nil {
			continue
		}
		sprint, ok := sprints[*t.SprintID]
		if ok && sprint.Status == store.SprintStatusActive {
			findings = append(findings, check.Finding{
				Category:    check.CategorySoftDelete,
				Severity:    check.SeverityWarning,
				Table:       "tasks",
				Field:       "sprint_id",
				RecordID:    t.ID.String(),
				Description: fmt.Sprintf("deleted task is still attached to active sprint %s", sprint.ID),
			})
		}
	}
	return findings
}

func parsesAsJSONArray(raw string) bool {
	var v []json.RawMessage
	return json.Unmarshal([]byte(raw), &v) == nil
}
