// Package repositories implements SQLite persistence for the migration simulator.
//
// Key Implementations:
//   - [StateRepository] : The simulator's state record (state, progress, processed count, checkpoint) and
//     its append-only transition history, implementing tasks.StateStore
//
// The schema lives in shared/sql and is applied by shared.RunMigrations. migration_state is a single-row table
// seeded with INITIALIZED, so Load never has to handle an empty database after migrations have run.
// Save updates the row and records a transition in the same transaction whenever the state changes.
package repositories
