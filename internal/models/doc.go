// Package models defines the data exchanged with the LiveMigrate backend and the values derived from it.
//
// The package contains two categories of types:
//
// 1. Wire types: decoded directly from the backend's JSON responses
//   - [MigrationStatus] : Current lifecycle [MigrationState] and progress
//
// 2. Derived and presentation types: computed locally, never sent over the wire
//   - [DerivedMetrics] : Records processed, speed and time remaining
//   - [Control] : The single action a user may take in a given state
//
// 3. Simulator records: persisted by the development backend
//   - [Snapshot] : State, progress, processed count and checkpoint
//   - [Transition] : One row of state history
//
// [MigrationState] values are kept as the raw strings the backend reports so an unknown state still
// round-trips and renders with the default tone.
package models
