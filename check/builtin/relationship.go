package builtin

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/store"
)

// Relationships verifies cross-entity consistency: tasks and sprints must
// agree on their project, sprint windows must be coherent, and sprint
// activity must match project state.
type Relationships struct{}

// NewRelationships creates the relationship check.
func NewRelationships() Relationships { return Relationships{} }

// Name returns the check identifier.
func (Relationships) Name() string { return NameRelationships }

// Validate runs the relationship probes.
func (Relationships) Validate(ctx context.Context, target check.Target) (*check.Outcome, error) {
	projects, err := target.Store.Projects(ctx)
	if err != nil {
		return nil, err
	}
	allSprints, err := target.Store.Sprints(ctx, store.Filter{})
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

	liveProjects := projectIDSet(projects)
	liveSprints := sprintIDSet(allSprints)

	r := check.NewRecorder(NameRelationships)
	r.Record(taskSprintProjectAgreement(tasks, liveSprints)...)
	r.Record(sprintWindows(sprints, liveProjects)...)
	r.Record(sprintProjectState(sprints, liveProjects)...)
	return r.Outcome(), nil
}

// taskSprintProjectAgreement flags tasks assigned to a sprint of a
// different project. Missing sprints are the integrity check's concern.
func taskSprintProjectAgreement(tasks []store.Task, sprints map[uuid.UUID]store.Sprint) []check.Finding {
	var findings []check.Finding
	for _, t := range tasks {
		if t.SprintID == nil {
			continue
		}
		sprint, ok := sprints[*t.SprintID]
		if !ok {
			continue
		}
		if sprint.ProjectID != t.ProjectID {
			findings = append(findings, check.Finding{
				Category:    check.CategoryRelationship,
				Severity:    check.SeverityCritical,
				Table:       "tasks",
				Field:       "sprint_id",
				RecordID:    t.ID.String(),
				Description: fmt.Sprintf("task belongs to project %s but its sprint belongs to project %s", t.ProjectID, sprint.ProjectID),
			})
		}
	}
	return findings
}

func sprintWindows(sprints []store.Sprint, projects map[uuid.UUID]store.Project) []check.Finding {
	var findings []check.Finding
	for _, s := range sprints {
		if s.StartsAt != nil && s.EndsAt != nil && s.EndsAt.Before(*s.StartsAt) {
			findings = append(findings, check.Finding{
				Category:    check.CategoryRelationship,
				Severity:    check.SeverityWarning,
				Table:       "sprints",
				Field:       "ends_at",
				RecordID:    s.ID.String(),
				Description: "sprint ends before it starts",
			})
		}
		project, ok := projects[s.ProjectID]
		if ok && s.StartsAt != nil && s.StartsAt.Before(project.CreatedAt) {
			findings = append(findings, check.Finding{
				Category:    check.CategoryRelationship,
				Severity:    check.SeverityWarning,
				Table:       "sprints",
				Field:       "starts_at",
				RecordID:    s.ID.String(),
				Description: "sprint starts before its project existed",
			})
		}
	}
	return findings
}

func sprintProjectState(sprints []store.Sprint, projects map[uuid.UUID]store.Project) []check.Finding {
	var findings []check.Finding
	for _, s := range sprints {
		if s.Status != store.SprintStatusActive {
			continue
		}
		project, ok := projects[s.ProjectID]
		if ok && project.Status == store.ProjectStatusArchived {
			findings = append(findings, check.Finding{
				Category:    check.CategoryRelationship,
				Severity:    check.SeverityWarning,
				Table:       "sprints",
				Field:       "status",
				RecordID:    s.ID.String(),
				Description: fmt.Sprintf("active sprint on archived project %s", project.ID),
			})
		}
	}
	return findings
}
