package check

import (
	"context"

	"github.com/kbukum/flowcheck/apiclient"
	"github.com/kbukum/flowcheck/store"
)

// Target is what a check validates: the tracker store, an optional record
// filter, and for behavior checks the task API client. Checks must treat
// the store as read-only.
type Target struct {
	// Store reads tracker records.
	Store store.Reader
	// Filter restricts store reads to one project or sprint.
	Filter store.Filter
	// API is the task API client. Nil for store-only checks.
	API *apiclient.Client
}

// Check is one validation check. Validate runs the check's probes against
// the target and returns their outcome. A returned error is a fault: the
// check could not run to completion (store unreachable, API transport
// failure), as opposed to a completed check whose outcome reports
// findings.
type Check interface {
	// Name returns the check's stable identifier.
	Name() string
	// Validate runs the check against the target.
	Validate(ctx context.Context, target Target) (*Outcome, error)
}
