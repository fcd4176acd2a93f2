// Package testutil provides an in-process fake of the external task API,
// backed by a real store, for exercising behavior checks.
//
// The fake implements the task CRUD contract (create 201, read 200,
// update 200, delete 204, read-after-delete 404) and enforces the task
// status transition rules. Knobs let tests make it misbehave: forcing
// status codes per operation, adding latency, accepting illegal
// transitions, or corrupting response payloads. Every mutation writes an
// audit entry, which gives the audit trail check real data to verify.
package testutil
