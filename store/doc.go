// Package store provides read access to the task tracker database that
// checks inspect.
//
// The tracker owns four record types: projects, sprints, tasks, and audit
// logs. Checks consume the Reader interface, which returns rows in a
// deterministic order so repeated runs over an unchanged database produce
// identical findings. The GORM-backed Store implements Reader; tests use
// the in-memory SQLite store from store/testutil.
//
// The store is read-only from the checks' point of view: nothing in this
// module mutates tracker records during a flow run.
package store
