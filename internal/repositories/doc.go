// Package repositories implements SQLite persistence for annotation snapshots and save history.
//
// Key Implementations:
//   - [SnapshotRepository] : Per-group annotation sets keyed by workspace and group key, with annotations
//     stored one row each in snapshot_annotations
//   - [SaveRecordRepository] : Append-mostly history of labeled output writes
//
// Sequence numbers provide stable, human-readable ordering for save history.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
