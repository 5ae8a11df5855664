// Package dashboard implements the migration dashboard's view-state synchronizer.
//
// # State
//
// [State] holds everything a dashboard displays: the last [models.MigrationStatus] received, the
// [models.DerivedMetrics] computed from it and an optional error message. It changes only through two
// operations, both pure and value-returning so front ends can own their copy:
//
//  1. [State.ApplyPoll] : result of a status fetch. Success replaces the status wholesale and recomputes metrics;
//     failure sets [MsgFetchFailed] and keeps the previous status and metrics.
//  2. [State.ApplyAction] : result of a start/pause/resume request. Success changes nothing; failure sets the
//     fixed message for that action. The status is never touched: the effect of an action is observed on the next poll.
//
// The error message is never cleared. A later success leaves it on screen until another failure replaces it.
//
// # Projection
//
// [Project] maps a State to a [View]: label, tone and icon keyed by state, bar width, metric tiles, the single available
// control and the error banner. Both the terminal UI and the web dashboard render from a View.
//
// # Session
//
// [Session] drives a State from a ticker for front ends without their own event loop (web, watch).
// Each tick launches a fetch in its own goroutine; overlapping fetches are allowed and the last one to complete wins.
// Cancelling the context passed to [Session.Run] tears the session down: the ticker stops and no new requests start.
// Run returns once in-flight requests have finished; their results are discarded.
package dashboard
