package models

import "time"

// Snapshot is the simulator's persisted migration record.
type Snapshot struct {
	State      MigrationState `json:"state"`
	Progress   float64        `json:"progress"`
	Processed  int            `json:"processed"`
	Checkpoint string         `json:"checkpoint,omitempty"` // ID of the last record in the last completed batch
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// InitialSnapshot is the record of a migration that has never started.
func InitialSnapshot() Snapshot {
	return Snapshot{State: StateInitialized}
}

// Status is the public view of the snapshot.
func (s Snapshot) Status() MigrationStatus {
	return MigrationStatus{State: s.State, Progress: s.Progress}
}

// Transition is one entry in the simulator's state history.
type Transition struct {
	ID        int64          `json:"id"`
	State     MigrationState `json:"state"`
	Progress  float64        `json:"progress"`
	CreatedAt time.Time      `json:"createdAt"`
}
