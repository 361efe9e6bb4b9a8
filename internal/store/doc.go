// Package store provides the SQLite-backed artifact ledger.
//
// Every generate run is recorded with:
//   - Runs: one row per invocation, keyed by a UUIDv7 run id
//   - Artifacts: one row per emitted file, keyed by (run_id, name)
//
// # Ordering
//
// Runs are ordered by a logical seq assigned inside the insert
// transaction, never by wall-clock time. All list queries use
// ORDER BY seq ASC, name ASC COLLATE BINARY.
//
// # Identity
//
// Each artifact carries its configuration as canonical JSON, the config
// fingerprint and the content hash. Both hashes are computed by
// internal/ir with domain-separated SHA-256, so a matching fingerprint
// and differing content hash means generation is not deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
