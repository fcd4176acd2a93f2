package report

import (
	"time"

	"github.com/kbukum/flowcheck/check"
)

// Overall flow statuses, most severe last.
const (
	StatusPassed             = "PASSED"
	StatusPassedWithWarnings = "PASSED_WITH_WARNINGS"
	StatusDegraded           = "DEGRADED"
	StatusFailed             = "FAILED"
)

// Report is the terminal artifact of one flow run.
type Report struct {
	// FlowID identifies the run. Artifacts are keyed by it.
	FlowID string `json:"flow_id"`
	// EngineVersion is the flowcheck build that produced the report.
	EngineVersion string `json:"engine_version,omitempty"`
	// Scope is the configured check scope of the run.
	Scope string `json:"scope,omitempty"`
	// Filter restricts what the checks inspected, when set.
	Filter *Filter `json:"filter,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	// DurationSeconds is the wall-clock length of the run.
	DurationSeconds float64 `json:"duration_seconds"`

	// Nodes lists every node's terminal state in execution order.
	Nodes []NodeResult `json:"nodes"`
	// ValidationSummary aggregates probe counters across executed nodes.
	ValidationSummary Summary `json:"validation_summary"`
	// OverallStatus is the derived verdict for the whole run.
	OverallStatus string `json:"overall_status"`
	// Recommendations is the ranked, bounded list of follow-up actions.
	Recommendations []Recommendation `json:"recommendations"`
}

// Filter mirrors the record filter the run was invoked with.
type Filter struct {
	ProjectID string `json:"project_id,omitempty"`
	SprintID  string `json:"sprint_id,omitempty"`
}

// NodeResult is one node's terminal state.
type NodeResult struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	DependsOn []string `json:"depends_on,omitempty"`
	// Status is the node's terminal lifecycle status.
	Status string `json:"status"`
	// DurationSeconds is how long the check ran. Zero when it never ran.
	DurationSeconds float64 `json:"duration_seconds"`
	// Error describes the fault for failed nodes and the cause for
	// blocked ones.
	Error string `json:"error,omitempty"`
	// Outcome is the check result. Present only for completed nodes.
	Outcome *check.Outcome `json:"outcome,omitempty"`
}

// Summary aggregates probe counters across all nodes that executed.
// Blocked and skipped nodes contribute nothing; a faulted node counts
// as one failed probe with one critical failure.
type Summary struct {
	TotalChecks      int `json:"total_checks"`
	Passed           int `json:"passed"`
	Failed           int `json:"failed"`
	Warnings         int `json:"warnings"`
	CriticalFailures int `json:"critical_failures"`
	// SuccessRate is passed over total as a percentage in [0, 100].
	SuccessRate float64 `json:"success_rate"`
}

// Recommendation is one ranked follow-up action. Priority groups
// recommendations: 1 for faulted checks, 2 for blocked checks, 3 for
// checks that completed with critical findings.
type Recommendation struct {
	Priority int    `json:"priority"`
	NodeID   string `json:"node_id"`
	Message  string `json:"message"`
}

// ExitCode maps the overall status to a process exit code: 0 for the
// success family, 1 for FAILED, 2 for DEGRADED.
func (r *Report) ExitCode() int {
	switch r.OverallStatus {
	case StatusPassed, StatusPassedWithWarnings:
		return 0
	case StatusDegraded:
		return 2
	default:
		return 1
	}
}
