// Package ui implements the interactive terminal dashboard using bubbletea's Elm architecture.
//
// The dashboard is a single screen:
//  1. Header with the migration state label, colored by tone, and an icon (spinner while MIGRATING)
//  2. Progress bar driven by the reported progress
//  3. Metric tiles: records processed, progress, speed, time remaining
//  4. The one control available in the current state, if any
//  5. The error banner, when a request has failed
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// A tick message arrives every [dashboard.PollInterval]; each one schedules the next tick and a status fetch as independent commands,
// so a slow request never delays polling. Results are folded into a [dashboard.State] and rendered through [dashboard.Project].
//
// Keys: s/p/r press the start/pause/resume control when it is shown, enter presses whichever control is shown, q quits.
// After quit the model ignores every message, so late responses cannot change what was last rendered.
package ui
