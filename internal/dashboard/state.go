package dashboard

import (
	"fmt"
	"math"
	"time"

	"github.com/desertthunder/lmx/internal/models"
)

// PollInterval is the fixed delay between status requests.
const PollInterval = 2 * time.Second

// Placeholder estimator constants.
const (
	TotalRecords   = 1000
	MigrationSpeed = 50 // records per second
)

// Fixed error messages shown in the banner.
const (
	MsgFetchFailed  = "Failed to fetch migration status"
	MsgStartFailed  = "Failed to start migration"
	MsgPauseFailed  = "Failed to pause migration"
	MsgResumeFailed = "Failed to resume migration"
)

// ActionErrorMessage returns the banner text for a failed control request.
func ActionErrorMessage(c models.Control) string {
	switch c {
	case models.ControlStart:
		return MsgStartFailed
	case models.ControlPause:
		return MsgPauseFailed
	case models.ControlResume:
		return MsgResumeFailed
	default:
		return ""
	}
}

// State is the dashboard's local copy of the backend plus derived display values.
type State struct {
	Status  models.MigrationStatus
	Metrics models.DerivedMetrics
	Err     string
}

// NewState returns the state shown before the first successful poll: INITIALIZED, zero progress, zero metrics.
func NewState() State {
	return State{Status: models.InitialStatus()}
}

// ApplyPoll folds the result of a status fetch into s.
func (s State) ApplyPoll(status models.MigrationStatus, err error) State {
	if err != nil {
		s.Err = MsgFetchFailed
		return s
	}
	s.Status = status
	s.Metrics = CalculateMetrics(status.Progress)
	return s
}

// ApplyAction folds the result of a control request into s.
func (s State) ApplyAction(c models.Control, err error) State {
	if err != nil {
		s.Err = ActionErrorMessage(c)
	}
	return s
}

// Control returns the control available in the current state.
func (s State) Control() models.Control {
	return models.ControlFor(s.Status.State)
}

// CalculateMetrics derives display metrics from a progress value.
//
// processed is floor(progress*100) rather than floor(progress*total); both constants are placeholders.
func CalculateMetrics(progress float64) models.DerivedMetrics {
	processed := int(math.Floor(progress * 100))
	remaining := int(math.Ceil(float64(TotalRecords-processed) / float64(MigrationSpeed)))

	return models.DerivedMetrics{
		TotalRecords:           TotalRecords,
		ProcessedRecords:       processed,
		MigrationSpeed:         MigrationSpeed,
		EstimatedTimeRemaining: remaining,
	}
}

// FormatTime renders seconds as "Xs" below one minute, otherwise "Ym Zs".
func FormatTime(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// FormatPercent renders a progress fraction as a percentage with one decimal.
func FormatPercent(progress float64) string {
	return fmt.Sprintf("%.1f%%", progress*100)
}
