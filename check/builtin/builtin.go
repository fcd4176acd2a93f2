package builtin

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/store"
)

// Names of the built-in checks.
const (
	NameDataIntegrity    = "data_integrity"
	NameRelationships    = "relationships"
	NameCRUDBehavior     = "crud_behavior"
	NameStateTransitions = "state_transitions"
	NameAuditTrail       = "audit_trail"
	NamePerformance      = "performance"
)

// probeProject selects the project behavior probes create scratch tasks
// under: the filtered project when a filter is set, otherwise the first
// active project, otherwise the first project. Returns a warning finding
// when the store has no usable project and an error when it cannot be read.
func probeProject(ctx context.Context, target check.Target) (string, *check.Finding, error) {
	if target.Filter.ProjectID != "" {
		return target.Filter.ProjectID, nil, nil
	}

	projects, err := target.Store.Projects(ctx)
	if err != nil {
		return "", nil, err
	}
	if len(projects) == 0 {
		return "", &check.Finding{
			Category:    check.CategoryBehavior,
			Severity:    check.SeverityWarning,
			Table:       "projects",
			Description: "no project available to host behavior probes; API behavior not exercised",
		}, nil
	}
	for _, p := range projects {
		if p.Status == store.ProjectStatusActive {
			return p.ID.String(), nil, nil
		}
	}
	return projects[0].ID.String(), nil, nil
}

func projectIDSet(projects []store.Project) map[uuid.UUID]store.Project {
	set := make(map[uuid.UUID]store.Project, len(projects))
	for _, p := range projects {
		set[p.ID] = p
	}
	return set
}

func sprintIDSet(sprints []store.Sprint) map[uuid.UUID]store.Sprint {
	set := make(map[uuid.UUID]store.Sprint, len(sprints))
	for _, s := range sprints {
		set[s.ID] = s
	}
	return set
}

func taskIDSet(tasks []store.Task) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(tasks))
	for _, t := range tasks {
		set[t.ID] = struct{}{}
	}
	return set
}
