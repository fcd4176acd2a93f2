// Package check defines the validation check contract and its result types.
//
// A Check runs a set of probes against a validation target (the tracker
// store, and for behavior checks the task API) and returns an Outcome:
// counters plus the list of findings the probes produced. Checks are
// read-only against the store and must not retry internally; transport
// retries belong to the API client and fault handling to the engine.
//
// The Recorder accumulates probe results and derives the outcome status:
// any critical finding makes the outcome FAILED, warning-only findings
// make it PASSED_WITH_WARNINGS, and no findings at all make it PASSED.
//
// Implementing a check:
//
//	type orphanCheck struct{}
//
//	func (orphanCheck) Name() string { return "orphans" }
//
//	func (orphanCheck) Validate(ctx context.Context, target check.Target) (*check.Outcome, error) {
//		tasks, err := target.Store.TasksAll(ctx, target.Filter)
//		if err != nil {
//			return nil, err
//		}
//		r := check.NewRecorder("orphans")
//		r.Record(findOrphans(tasks)...)
//		return r.Outcome(), nil
//	}
package check
