// Package testutil provides testing utilities for the store module.
//
// MustOpen creates an in-memory SQLite store with the tracker schema
// migrated, registered for cleanup with the test. Seed helpers create
// well-formed records through the model hooks, while LoadFixture inserts
// raw rows directly into a table, bypassing hooks, which lets tests plant
// corrupt data (orphaned references, malformed JSON, inverted timestamps)
// that the integrity checks are expected to find.
package testutil
