package flow

// Node lifecycle statuses.
const (
	// StatusPending means the node has not been scheduled yet.
	StatusPending = "PENDING"
	// StatusRunning means the node's check is executing.
	StatusRunning = "RUNNING"
	// StatusCompleted means the check ran to completion and produced an
	// outcome. The outcome itself may still report failed probes.
	StatusCompleted = "COMPLETED"
	// StatusFailed means the check faulted: it returned an error, timed
	// out, or panicked, and produced no outcome.
	StatusFailed = "FAILED"
	// StatusBlocked means the node never ran because a dependency failed,
	// completed with critical findings, or was itself blocked.
	StatusBlocked = "BLOCKED"
	// StatusSkipped means the node was excluded from the run by a filter.
	// Skipped nodes satisfy their dependents.
	StatusSkipped = "SKIPPED"
)

// statusTransitions maps each status to the statuses it may move to.
// Terminal statuses map to an empty set.
var statusTransitions = map[string][]string{
	StatusPending:   {StatusRunning, StatusBlocked, StatusSkipped},
	StatusRunning:   {StatusCompleted, StatusFailed},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusBlocked:   {},
	StatusSkipped:   {},
}

// CanTransition reports whether a node may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is final for a node.
func IsTerminal(status string) bool {
	allowed, ok := statusTransitions[status]
	return ok && len(allowed) == 0
}

// ValidStatus reports whether the string is a known node status.
func ValidStatus(status string) bool {
	_, ok := statusTransitions[status]
	return ok
}
