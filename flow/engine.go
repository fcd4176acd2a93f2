package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/flowcheck/check"
	"github.com/kbukum/flowcheck/errors"
	"github.com/kbukum/flowcheck/logger"
	"github.com/kbukum/flowcheck/observability"
)

// NodeFilter decides whether a node executes. Nodes for which the
// filter returns false are marked skipped before any layer runs.
// Skipped nodes satisfy their dependents.
type NodeFilter func(n *Node) bool

// Engine executes a Graph layer by layer. Nodes within a layer run
// concurrently up to the configured worker bound, and every node of a
// layer reaches a terminal or skipped state before the next layer
// starts.
type Engine struct {
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewEngine creates an engine. A nil logger falls back to a no-op
// logger.
func NewEngine(cfg Config, log *logger.Logger) *Engine {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{cfg: cfg, log: log.WithComponent("flow.engine")}
}

// WithMetrics attaches a metrics instrument set and returns the engine.
func (e *Engine) WithMetrics(m *observability.Metrics) *Engine {
	e.metrics = m
	return e
}

// Run executes every node of the graph against the target.
func (e *Engine) Run(ctx context.Context, g *Graph, target check.Target) error {
	return e.RunFiltered(ctx, g, target, nil)
}

// RunFiltered executes the graph, skipping nodes the filter rejects.
//
// The engine always drives every node to a terminal state: completed or
// failed when it ran, blocked when a dependency disqualified it or the
// run ended early, skipped when the filter excluded it. Cancellation
// and run timeout therefore do not surface as an error here; callers
// read the per-node results off the graph. The only error is reuse of
// an already-executed graph.
func (e *Engine) RunFiltered(ctx context.Context, g *Graph, target check.Target, filter NodeFilter) error {
	for _, n := range g.Nodes() {
		if n.Status != StatusPending {
			return errors.InvalidInput("graph", "graph was already executed")
		}
	}

	if e.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.RunTimeout)
		defer cancel()
	}

	if filter != nil {
		for _, n := range g.Nodes() {
			if !filter(n) {
				n.skip()
				e.log.Debug("check skipped", logger.Fields("node", n.ID))
			}
		}
	}

	aborted := false
	for i, layer := range g.Layers() {
		if ctx.Err() != nil || aborted {
			break
		}
		layerFailed := e.runLayer(ctx, i, layer, g, target)
		if layerFailed && e.cfg.AbortOnFailure {
			aborted = true
			e.log.Warn("aborting after failed layer", logger.Fields("layer", i))
		}
	}

	e.sweep(ctx, g)
	return nil
}

// runLayer blocks disqualified nodes, executes the rest with bounded
// concurrency, and reports whether any executed node faulted or
// completed with critical findings.
func (e *Engine) runLayer(ctx context.Context, index int, ids []string, g *Graph, target check.Target) bool {
	ctx, span := observability.StartSpan(ctx, observability.SpanFlowLayer)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrLayer, index)

	var ready []*Node
	blocked := int64(0)
	for _, id := range ids {
		n, ok := g.Node(id)
		if !ok || n.Status == StatusSkipped {
			continue
		}
		if cause := blockCause(g, n); cause != nil {
			n.block(cause)
			blocked++
			e.log.Warn("check blocked", logger.Fields("node", n.ID, "cause", cause.Error()))
			continue
		}
		ready = append(ready, n)
	}
	if blocked > 0 && e.metrics != nil {
		e.metrics.RecordBlocked(ctx, blocked)
	}
	if len(ready) == 0 {
		return false
	}

	e.log.Debug("layer started", logger.Fields("layer", index, "nodes", len(ready)))

	sem := make(chan struct{}, e.workers(len(ready)))
	var wg sync.WaitGroup
	for _, n := range ready {
		wg.Add(1)
		go func(n *Node) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			// A node not yet started when the run is canceled stays
			// pending; the sweep blocks it.
			if ctx.Err() != nil {
				return
			}
			e.executeNode(ctx, n, target)
		}(n)
	}
	wg.Wait()

	for _, n := range ready {
		if n.Status == StatusFailed || n.Outcome.IsCriticalFailure() {
			return true
		}
	}
	return false
}

// blockCause returns why the node must not run, or nil when every
// dependency is satisfied. Skipped dependencies satisfy dependents;
// faulted, critically failed, and blocked dependencies do not.
func blockCause(g *Graph, n *Node) error {
	for _, depID := range n.DependsOn {
		dep, ok := g.Node(depID)
		if !ok {
			continue
		}
		switch dep.Status {
		case StatusSkipped:
		case StatusCompleted:
			if dep.Outcome.IsCriticalFailure() {
				return fmt.Errorf("dependency %s completed with critical findings", depID)
			}
		case StatusFailed:
			return fmt.Errorf("dependency %s faulted: %v", depID, dep.Err)
		case StatusBlocked:
			return fmt.Errorf("dependency %s was blocked upstream", depID)
		default:
			return fmt.Errorf("dependency %s did not reach a terminal state", depID)
		}
	}
	return nil
}

// executeNode runs one node's check and records the result on the node.
func (e *Engine) executeNode(ctx context.Context, n *Node, target check.Target) {
	ctx, span := observability.StartSpan(ctx, observability.SpanCheckRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrNodeID, n.ID)

	n.start()
	outcome, err := e.invoke(ctx, n, target)
	if err == nil && outcome == nil {
		err = errors.Internal(fmt.Errorf("check %s returned no outcome", n.ID))
	}

	if err != nil {
		n.fail(err)
		observability.SetSpanError(ctx, err)
		e.log.WithError(err).Error("check faulted", logger.Fields(
			"node", n.ID,
			"duration", n.Duration().String(),
		))
	} else {
		n.complete(outcome)
		observability.SetSpanAttribute(ctx, observability.AttrCheckStatus, outcome.Status)
		observability.SetSpanAttribute(ctx, observability.AttrFindings, len(outcome.Findings))
		e.log.Debug("check completed", logger.Fields(
			"node", n.ID,
			"status", outcome.Status,
			"findings", len(outcome.Findings),
			"duration", n.Duration().String(),
		))
	}
	observability.SetSpanAttribute(ctx, observability.AttrNodeStatus, n.Status)

	if e.metrics != nil {
		e.metrics.RecordCheck(ctx, n.ID, n.Status, n.Duration())
		if n.Outcome != nil {
			critical := int64(n.Outcome.CriticalCount)
			e.metrics.RecordFindings(ctx, n.ID, check.SeverityCritical, critical)
			e.metrics.RecordFindings(ctx, n.ID, check.SeverityWarning, int64(len(n.Outcome.Findings))-critical)
		}
	}
}

type checkResult struct {
	outcome *check.Outcome
	err     error
}

// invoke runs the check under the per-check timeout, converting panics
// and timeouts into faults. When the surrounding run is canceled the
// cancellation error wins over the per-check timeout.
func (e *Engine) invoke(ctx context.Context, n *Node, target check.Target) (*check.Outcome, error) {
	checkCtx := ctx
	cancel := func() {}
	if e.cfg.CheckTimeout > 0 {
		checkCtx, cancel = context.WithTimeout(ctx, e.cfg.CheckTimeout)
	}
	defer cancel()

	done := make(chan checkResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- checkResult{err: errors.CheckPanic(n.ID, r)}
			}
		}()
		outcome, err := n.Check.Validate(checkCtx, target)
		done <- checkResult{outcome: outcome, err: err}
	}()

	select {
	case res := <-done:
		return res.outcome, res.err
	case <-checkCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errors.CheckTimeout(n.ID, e.cfg.CheckTimeout.String())
	}
}

// sweep blocks every node still pending after the layer loop ends.
// Pending nodes remain only when the run was aborted or canceled.
func (e *Engine) sweep(ctx context.Context, g *Graph) {
	var reason error
	if cause := ctx.Err(); cause != nil {
		reason = fmt.Errorf("flow run ended early: %w", cause)
	} else {
		reason = fmt.Errorf("aborted after an earlier layer failed")
	}

	blocked := int64(0)
	for _, n := range g.Nodes() {
		if n.Status != StatusPending {
			continue
		}
		n.block(reason)
		blocked++
	}
	if blocked > 0 {
		e.log.Warn("blocked unscheduled nodes", logger.Fields("count", blocked, "cause", reason.Error()))
		if e.metrics != nil {
			e.metrics.RecordBlocked(ctx, blocked)
		}
	}
}

// workers returns the concurrency bound for a layer of the given size.
func (e *Engine) workers(layerSize int) int {
	if !e.cfg.Parallel || e.cfg.Workers < 1 {
		return 1
	}
	if e.cfg.Workers > layerSize {
		return layerSize
	}
	return e.cfg.Workers
}
