// package models defines the data model for the migration dashboard
package models

// MigrationState is the lifecycle phase reported by the backend.
type MigrationState string

const (
	StateInitialized MigrationState = "INITIALIZED"
	StatePreparing   MigrationState = "PREPARING"
	StateMigrating   MigrationState = "MIGRATING"
	StateValidating  MigrationState = "VALIDATING"
	StateSwitching   MigrationState = "SWITCHING"
	StateCompleted   MigrationState = "COMPLETED"
	StatePaused      MigrationState = "PAUSED"
	StateError       MigrationState = "ERROR"
)

// States lists every state the backend is known to report, in lifecycle order.
var States = []MigrationState{
	StateInitialized,
	StatePreparing,
	StateMigrating,
	StateValidating,
	StateSwitching,
	StateCompleted,
	StatePaused,
	StateError,
}

func (s MigrationState) String() string { return string(s) }

// Valid reports whether s is one of [States].
func (s MigrationState) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

// MigrationStatus is the body of GET /livemigrate/api/v1/migration/status.
type MigrationStatus struct {
	State    MigrationState `json:"state"`
	Progress float64        `json:"progress"` // Nominally a fraction in [0,1]
}

// InitialStatus is the status shown before the first successful poll.
func InitialStatus() MigrationStatus {
	return MigrationStatus{State: StateInitialized, Progress: 0}
}

// DerivedMetrics are display values computed from a [MigrationStatus].
type DerivedMetrics struct {
	TotalRecords           int `json:"totalRecords"`
	ProcessedRecords       int `json:"processedRecords"`
	MigrationSpeed         int `json:"migrationSpeed"`         // Records per second
	EstimatedTimeRemaining int `json:"estimatedTimeRemaining"` // Seconds
}

// Control is the action a user may take for the current state.
type Control int

const (
	ControlNone Control = iota
	ControlStart
	ControlPause
	ControlResume
)

func (c Control) String() string {
	switch c {
	case ControlStart:
		return "start"
	case ControlPause:
		return "pause"
	case ControlResume:
		return "resume"
	default:
		return ""
	}
}

// Label is the button caption for the control.
func (c Control) Label() string {
	switch c {
	case ControlStart:
		return "Start Migration"
	case ControlPause:
		return "Pause Migration"
	case ControlResume:
		return "Resume Migration"
	default:
		return ""
	}
}

// ParseControl maps an action name ("start", "pause", "resume") to its [Control].
func ParseControl(name string) (Control, bool) {
	switch name {
	case "start":
		return ControlStart, true
	case "pause":
		return ControlPause, true
	case "resume":
		return ControlResume, true
	default:
		return ControlNone, false
	}
}

// ControlFor returns the single control available in state s.
//
// Only INITIALIZED, MIGRATING and PAUSED offer a control.
func ControlFor(s MigrationState) Control {
	switch s {
	case StateInitialized:
		return ControlStart
	case StateMigrating:
		return ControlPause
	case StatePaused:
		return ControlResume
	default:
		return ControlNone
	}
}
