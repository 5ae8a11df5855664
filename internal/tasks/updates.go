package tasks

import (
	"fmt"

	"github.com/desertthunder/lmx/internal/models"
)

// ProgressUpdate represents a progress event during a simulated migration.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	State   models.MigrationState // Lifecycle phase
	Step    int                   // Records processed so far
	Total   int                   // Records to process
	Message string                // Human-readable message for display
	Data    any                   // Optional phase-specific data
}

func preparingUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		State:   models.StatePreparing,
		Step:    step,
		Total:   total,
		Message: "Preparing migration...",
	}
}

func migratingUpdate(step, total int, resumed bool) ProgressUpdate {
	msg := fmt.Sprintf("Migrating records from %d/%d...", step, total)
	if resumed {
		msg = fmt.Sprintf("Resuming from checkpoint at %d/%d...", step, total)
	}
	return ProgressUpdate{
		State:   models.StateMigrating,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func batchUpdate(snap models.Snapshot, total int) ProgressUpdate {
	return ProgressUpdate{
		State:   models.StateMigrating,
		Step:    snap.Processed,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] batch committed (checkpoint %s)", snap.Processed, total, snap.Checkpoint),
		Data:    snap,
	}
}

func phaseUpdate(state models.MigrationState, step, total int) ProgressUpdate {
	var msg string
	switch state {
	case models.StateValidating:
		msg = "Validating migrated records..."
	case models.StateSwitching:
		msg = "Switching reads to the new schema..."
	case models.StateCompleted:
		msg = fmt.Sprintf("✓ Migration completed (%d records)", step)
	case models.StatePaused:
		msg = fmt.Sprintf("Migration paused at %d/%d", step, total)
	case models.StateError:
		msg = "✗ Migration failed"
	default:
		msg = state.String()
	}
	return ProgressUpdate{State: state, Step: step, Total: total, Message: msg}
}
