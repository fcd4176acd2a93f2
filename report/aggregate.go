package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/flow"
	"github.com/kbukum/flowcheck/util"
)

const defaultMaxRecommendations = 10

// Builder assembles one immutable Report from a finished graph.
type Builder struct {
	FlowID        string
	EngineVersion string
	Scope         string
	Filter        *Filter
	StartedAt     time.Time
	CompletedAt   time.Time
	// MaxRecommendations caps the ranked list. Defaults to 10.
	MaxRecommendations int
}

// Build derives the report from the graph's terminal node states. The
// graph is read once and never mutated; calling Build twice on the
// same finished graph yields equal reports.
func (b Builder) Build(g *flow.Graph) *Report {
	r := &Report{
		FlowID:          b.FlowID,
		EngineVersion:   b.EngineVersion,
		Scope:           b.Scope,
		Filter:          b.Filter,
		StartedAt:       b.StartedAt,
		CompletedAt:     b.CompletedAt,
		DurationSeconds: roundSeconds(b.CompletedAt.Sub(b.StartedAt)),
		Nodes:           make([]NodeResult, 0, g.Len()),
	}

	blocked := 0
	for _, id := range g.Order() {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		r.Nodes = append(r.Nodes, NodeResult{
			ID:              n.ID,
			Name:            n.Name,
			DependsOn:       append([]string(nil), n.DependsOn...),
			Status:          n.Status,
			DurationSeconds: roundSeconds(n.Duration()),
			Error:           errorString(n.Err),
			Outcome:         n.Outcome,
		})

		switch n.Status {
		case flow.StatusCompleted:
			if n.Outcome != nil {
				r.ValidationSummary.TotalChecks += n.Outcome.TotalChecks
				r.ValidationSummary.Passed += n.Outcome.Passed
				r.ValidationSummary.Failed += n.Outcome.Failed
				r.ValidationSummary.Warnings += n.Outcome.Warnings
				r.ValidationSummary.CriticalFailures += n.Outcome.CriticalCount
			}
		case flow.StatusFailed:
			// A fault weighs like one critically failed probe.
			r.ValidationSummary.TotalChecks++
			r.ValidationSummary.Failed++
			r.ValidationSummary.CriticalFailures++
		case flow.StatusBlocked:
			blocked++
		}
	}

	r.ValidationSummary.SuccessRate = successRate(r.ValidationSummary.Passed, r.ValidationSummary.TotalChecks)
	r.OverallStatus = overallStatus(r.ValidationSummary, blocked)
	r.Recommendations = recommendations(g, b.maxRecommendations())
	return r
}

func (b Builder) maxRecommendations() int {
	if b.MaxRecommendations > 0 {
		return b.MaxRecommendations
	}
	return defaultMaxRecommendations
}

// successRate is passed over total as a percentage, 0 for an empty run,
// rounded to two decimals.
func successRate(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(passed)/float64(total)*100*100) / 100
}

// overallStatus derives the verdict, evaluated in order: critical
// failures dominate; a run with blocked nodes never passes, since its
// coverage is incomplete; a clean run passes; otherwise the success
// rate picks the grade.
func overallStatus(s Summary, blockedNodes int) string {
	switch {
	case s.CriticalFailures > 0:
		return StatusFailed
	case blockedNodes > 0:
		return StatusDegraded
	case s.Failed == 0 && s.Warnings == 0:
		return StatusPassed
	case s.SuccessRate >= 90:
		return StatusPassedWithWarnings
	case s.SuccessRate >= 70:
		return StatusDegraded
	default:
		return StatusFailed
	}
}

// recommendations ranks follow-up actions: faulted checks first, then
// blocked ones, then completed checks with critical findings.
// Lexicographic by node id within each rank, truncated to limit.
func recommendations(g *flow.Graph, limit int) []Recommendation {
	var recs []Recommendation
	add := func(priority int, id, message string) {
		recs = append(recs, Recommendation{Priority: priority, NodeID: id, Message: message})
	}

	nodes := g.Nodes()
	for _, n := range nodes {
		if n.Status == flow.StatusFailed {
			add(1, n.ID, fmt.Sprintf("Check %q did not run to completion: %v. Fix the fault and re-run the flow.", n.ID, n.Err))
		}
	}
	for _, n := range nodes {
		if n.Status == flow.StatusBlocked {
			add(2, n.ID, fmt.Sprintf("Check %q never ran: %v. Resolve the upstream failure to restore coverage.", n.ID, n.Err))
		}
	}
	for _, n := range nodes {
		if n.Status == flow.StatusCompleted && n.Outcome != nil && n.Outcome.CriticalCount > 0 {
			add(3, n.ID, fmt.Sprintf("Check %q reported %d critical findings (%s). Repair the flagged records before relying on this data.",
				n.ID, n.Outcome.CriticalCount, strings.Join(criticalCategories(n.Outcome), ", ")))
		}
	}

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// criticalCategories returns the distinct categories of the outcome's
// critical findings in sorted order.
func criticalCategories(o *check.Outcome) []string {
	seen := make(map[string]struct{})
	for _, f := range o.Findings {
		if f.IsCritical() {
			seen[f.Category] = struct{}{}
		}
	}
	return util.SortedKeys(seen)
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// roundSeconds converts a duration to seconds at millisecond precision.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
