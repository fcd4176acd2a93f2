// Package flow schedules validation checks as a dependency graph and
// executes them in deterministic layers.
//
// A Graph is built from node specs, each naming a check and the nodes it
// depends on. Construction rejects duplicate IDs, unknown dependencies,
// and cycles. Nodes are grouped into layers by Kahn's algorithm with
// lexicographic ordering inside each layer, so the same specs always
// produce the same layering.
//
// The Engine runs layers in order. Nodes within a layer run concurrently
// up to a configured worker bound, and a layer must finish before the
// next starts. A node whose dependency faulted or completed with critical
// findings is blocked rather than run, and blocking propagates to its
// transitive dependents. Skipped nodes satisfy their dependents without
// contributing results.
//
// The engine mutates node state in place; a Graph records one run and is
// not reusable.
package flow
