package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/check/builtin"
	"github.com/kbukum/flowcheck/errors"
	"github.com/kbukum/flowcheck/flow"
	"github.com/kbukum/flowcheck/logger"
	"github.com/kbukum/flowcheck/observability"
	"github.com/kbukum/flowcheck/report"
	"github.com/kbukum/flowcheck/store"
	"github.com/kbukum/flowcheck/version"
)

// suiteEntry declares one check of the fixed flow.
type suiteEntry struct {
	id   string
	name string
	deps []string
}

// suite is the built-in check flow. data_integrity gates everything;
// audit_trail and performance additionally need a working task API,
// which crud_behavior proves.
var suite = []suiteEntry{
	{id: builtin.NameDataIntegrity, name: "Data Integrity"},
	{id: builtin.NameRelationships, name: "Relationship Consistency", deps: []string{builtin.NameDataIntegrity}},
	{id: builtin.NameCRUDBehavior, name: "CRUD Behavior", deps: []string{builtin.NameDataIntegrity}},
	{id: builtin.NameStateTransitions, name: "State Transitions", deps: []string{builtin.NameDataIntegrity}},
	{id: builtin.NameAuditTrail, name: "Audit Trail", deps: []string{builtin.NameCRUDBehavior}},
	{id: builtin.NamePerformance, name: "API Performance", deps: []string{builtin.NameCRUDBehavior}},
}

// DefaultRegistry returns a registry holding every built-in check with
// default settings.
func DefaultRegistry() *check.Registry {
	reg := check.NewRegistry()
	reg.Register(builtin.NewDataIntegrity())
	reg.Register(builtin.NewRelationships())
	reg.Register(builtin.NewCRUDBehavior())
	reg.Register(builtin.NewStateTransitions())
	reg.Register(builtin.NewAuditTrail())
	reg.Register(builtin.NewPerformance(builtin.PerformanceConfig{}))
	return reg
}

// Runner executes the built-in suite against a target and produces one
// flow report per invocation.
type Runner struct {
	cfg      flow.Config
	log      *logger.Logger
	engine   *flow.Engine
	registry *check.Registry
	writer   *report.Writer
	metrics  *observability.Metrics
}

// New creates a runner with the default check registry. A nil logger
// falls back to a no-op logger.
func New(cfg flow.Config, log *logger.Logger) *Runner {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		cfg:      cfg,
		log:      log.WithComponent("flow.runner"),
		engine:   flow.NewEngine(cfg, log),
		registry: DefaultRegistry(),
		writer:   report.NewWriter(cfg.ReportDir, log),
	}
}

// WithMetrics attaches a metrics instrument set to the runner and its
// engine.
func (r *Runner) WithMetrics(m *observability.Metrics) *Runner {
	r.metrics = m
	r.engine.WithMetrics(m)
	return r
}

// WithRegistry replaces the check registry. The registry must resolve
// every suite id.
func (r *Runner) WithRegistry(reg *check.Registry) *Runner {
	r.registry = reg
	return r
}

// Run executes one flow against the target and writes the report
// artifact. The returned report enumerates every node's terminal
// state; Run fails without a report only when the filter is invalid or
// the graph cannot be built. When only the artifact write fails, the
// report is returned alongside the error.
func (r *Runner) Run(ctx context.Context, target check.Target) (*report.Report, error) {
	if err := target.Filter.Validate(); err != nil {
		return nil, err
	}

	g, err := r.buildGraph()
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()
	flowID := newFlowID(startedAt)

	ctx, span := observability.StartSpan(ctx, observability.SpanFlowRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrFlowID, flowID)
	observability.SetSpanAttribute(ctx, observability.AttrScope, r.cfg.Scope)

	log := r.log.WithFields(logger.Fields("flow_id", flowID, "scope", r.cfg.Scope))
	log.Info("flow started", logger.Fields("nodes", g.Len(), "parallel", r.cfg.Parallel))

	if err := r.engine.RunFiltered(ctx, g, target, r.skipFilter()); err != nil {
		return nil, err
	}
	completedAt := time.Now()

	rep := report.Builder{
		FlowID:             flowID,
		EngineVersion:      version.Short(),
		Scope:              r.cfg.Scope,
		Filter:             reportFilter(target.Filter),
		StartedAt:          startedAt,
		CompletedAt:        completedAt,
		MaxRecommendations: r.cfg.MaxRecommendations,
	}.Build(g)

	if r.metrics != nil {
		r.metrics.RecordRun(ctx, r.cfg.Scope, rep.OverallStatus, completedAt.Sub(startedAt))
	}

	log.Info("flow completed", logger.Fields(
		"status", rep.OverallStatus,
		"total_checks", rep.ValidationSummary.TotalChecks,
		"critical_failures", rep.ValidationSummary.CriticalFailures,
		"recommendations", len(rep.Recommendations),
		"duration", completedAt.Sub(startedAt).String(),
	))

	if _, err := r.writer.Write(rep); err != nil {
		return rep, err
	}
	return rep, nil
}

// buildGraph assembles the suite from the registry.
func (r *Runner) buildGraph() (*flow.Graph, error) {
	specs := make([]flow.Spec, 0, len(suite))
	for _, entry := range suite {
		c, ok := r.registry.Get(entry.id)
		if !ok {
			return nil, errors.InvalidInput("check", fmt.Sprintf("no check registered for %q", entry.id))
		}
		specs = append(specs, flow.Spec{ID: entry.id, Name: entry.name, Check: c, DependsOn: entry.deps})
	}
	return flow.NewGraph(specs)
}

// skipFilter translates scope and the performance gate into the
// engine's node filter. Quick scope drops the checks that need the
// task API cycle; performance additionally needs its own gate.
func (r *Runner) skipFilter() flow.NodeFilter {
	quick := r.cfg.Scope == flow.ScopeQuick
	includePerf := r.cfg.IncludePerformance
	return func(n *flow.Node) bool {
		switch n.ID {
		case builtin.NameAuditTrail:
			return !quick
		case builtin.NamePerformance:
			return !quick && includePerf
		default:
			return true
		}
	}
}

// reportFilter mirrors a non-empty store filter into the report.
func reportFilter(f store.Filter) *report.Filter {
	if f.IsZero() {
		return nil
	}
	return &report.Filter{ProjectID: f.ProjectID, SprintID: f.SprintID}
}

// newFlowID builds an id such as flow-20260314T093045-1b9f0c44. The
// timestamp keys artifacts chronologically, the uuid fragment keeps
// concurrent runs distinct.
func newFlowID(now time.Time) string {
	return fmt.Sprintf("flow-%s-%s", now.UTC().Format("20060102T150405"), uuid.NewString()[:8])
}
