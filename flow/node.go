package flow

import (
	"time"

	"github.com/kbukum/flowcheck/check"
)

// Spec declares one node for graph construction.
type Spec struct {
	// ID is the node's unique identifier within the graph.
	ID string
	// Name is a human-readable label. Defaults to ID when empty.
	Name string
	// Check is the validation check the node runs.
	Check check.Check
	// DependsOn lists the IDs of nodes that must finish first.
	DependsOn []string
}

// Node is one scheduled check and its execution state. The engine is the
// only writer during a run: a node is mutated either by the single
// worker executing it or by the coordinator between layers, never both
// at once.
type Node struct {
	// ID is the node's unique identifier.
	ID string
	// Name is the node's human-readable label.
	Name string
	// Check is the validation check the node runs.
	Check check.Check
	// DependsOn lists the IDs of nodes that must finish first.
	DependsOn []string

	// Status is the node's lifecycle status.
	Status string
	// Outcome is the check result. Set only for completed nodes.
	Outcome *check.Outcome
	// Err is the fault for failed nodes and the cause for blocked ones.
	Err error
	// StartedAt is when the check began executing.
	StartedAt time.Time
	// FinishedAt is when the check stopped executing.
	FinishedAt time.Time
}

// Duration returns how long the node's check ran, or zero if it never
// ran to an end.
func (n *Node) Duration() time.Duration {
	if n.StartedAt.IsZero() || n.FinishedAt.IsZero() {
		return 0
	}
	return n.FinishedAt.Sub(n.StartedAt)
}

func (n *Node) start() {
	n.Status = StatusRunning
	n.StartedAt = time.Now()
}

func (n *Node) complete(outcome *check.Outcome) {
	n.Status = StatusCompleted
	n.Outcome = outcome
	n.FinishedAt = time.Now()
}

func (n *Node) fail(err error) {
	n.Status = StatusFailed
	n.Err = err
	n.FinishedAt = time.Now()
}

func (n *Node) block(reason error) {
	n.Status = StatusBlocked
	n.Err = reason
}

func (n *Node) skip() {
	n.Status = StatusSkipped
}
