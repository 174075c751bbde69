// Package tasks runs labeling operations across many groups with real-time progress reporting.
//
// # Core Operations
//
//  1. [Engine.BatchSave] : Write labeled output for every group that has a stored snapshot
//     - Loads each group's files
//     - Writes merged or separate artifacts through dataset.Save
//     - Records a history entry per saved group
//     - Writes a manifest summarizing the batch
//
//  2. [Engine.BatchExport] : Export the stored annotations of every group in one format
//
// # Progress Reporting
//
// Both operations send [ProgressUpdate] values on an optional channel. Sends never block; an
// update is dropped when the receiver is not keeping up.
//
// # Implementation
//
// Work is fanned out to a bounded worker pool. A token bucket limiter paces how fast groups are
// handed to workers so a batch over a slow network mount does not saturate it.
package tasks
