// Package tasks implements the development backend's migration engine.
//
// # Lifecycle
//
// [Coordinator] drives a migration through PREPARING → MIGRATING → VALIDATING → SWITCHING → COMPLETED:
//
//  1. [Coordinator.Start] : Records PREPARING then MIGRATING and launches a background run from the stored checkpoint.
//     Fails with shared.ErrMigrationInProgress while a run is active.
//  2. [Coordinator.Pause] : Cancels the run between records, discards the partial batch and records PAUSED.
//  3. [Coordinator.Resume] : Continues a PAUSED migration from its checkpoint.
//  4. [Coordinator.Recover] : Marks a run interrupted by a crash as PAUSED.
//
// # Batches
//
// Records are processed in batches by a small worker pool. Each record sleeps for the configured delay and is
// assigned a UUID; after a batch the processed count, checkpoint (last record ID) and progress are saved.
// Progress is processed/total, or that times 100 with the percent scale.
//
// # Progress Reporting
//
// Runs emit [ProgressUpdate] values through an optional channel using select with default so reporting never blocks.
// An optional [BatchObserver] receives batch timings for metrics.
//
// # Storage
//
// [StateStore] abstracts persistence. [MemoryStore] is process-local; the repositories package provides a SQLite store.
package tasks
