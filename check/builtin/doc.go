// Package builtin provides the built-in validation checks for the tracker.
//
// Store checks (data_integrity, relationships, audit_trail) read records
// through store.Reader and verify referential, structural, and historical
// invariants. Behavior checks (crud_behavior, state_transitions,
// performance) exercise the task API through apiclient and compare
// observed status codes, payloads, and latency against the contract.
//
// Record filters restrict which child records are validated; parent
// lookups always read the full store, so a legitimately cross-scoped
// reference is never reported as missing.
package builtin
