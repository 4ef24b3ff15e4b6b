// Package store provides SQLite-backed durable storage for booth survey data.
//
// The store holds two tables:
//   - responses: the ordered record of truth for survey responses
//   - settings: device-local key/value pairs (configuration, device identity)
//
// # Ordering
//
// Insertion order is the seq INTEGER column, never the timestamp. Every read
// of responses uses ORDER BY seq ASC so that merged foreign records stay after
// the local records that existed when they were merged.
//
// # Atomicity
//
// Batch appends and sync marking run in a single transaction. A failure in
// any row rolls back the whole batch; callers never observe a partial merge.
//
// # Failures
//
// Every error returned by this package is a *survey.Error with code STORAGE.
// A full disk is reported as such rather than dropped.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
