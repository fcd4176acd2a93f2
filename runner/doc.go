// Package runner wires the fixed built-in check suite into a flow
// graph, executes it, and turns the result into a persisted flow
// report.
//
// The suite is declarative: data_integrity is the root, the behavior
// and relationship checks depend on it, and audit_trail and
// performance depend on crud_behavior. Scope and the performance gate
// translate into an engine skip filter, so excluded checks end
// SKIPPED instead of silently disappearing from the report.
package runner
