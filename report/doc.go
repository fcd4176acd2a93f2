// Package report aggregates a finished flow graph into a single flow
// report: per-node terminal states, a validation summary with the
// derived overall status, and a ranked list of recommendations.
//
// A report is built exactly once per run from the graph's final node
// states and is immutable afterwards. The Writer persists reports as
// one JSON artifact per run, keyed by flow id, with stable snake_case
// keys for downstream tooling.
package report
