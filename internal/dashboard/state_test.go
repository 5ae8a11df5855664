package dashboard

import (
	"errors"
	"testing"

	"github.com/desertthunder/lmx/internal/models"
)

func TestCalculateMetrics(t *testing.T) {
	tc := []struct {
		name      string
		progress  float64
		processed int
		remaining int
	}{
		{"zero", 0, 0, 20},
		{"fifth", 0.2, 20, 20},
		{"forty-two percent", 0.42, 42, 20},
		{"complete", 1, 100, 18},
		{"rounds remaining up", 0.01, 1, 20},
		{"percent scaled input", 50, 5000, -80},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			m := CalculateMetrics(tt.progress)

			if m.TotalRecords != 1000 {
				t.Errorf("expected total 1000, got %d", m.TotalRecords)
			}
			if m.MigrationSpeed != 50 {
				t.Errorf("expected speed 50, got %d", m.MigrationSpeed)
			}
			if m.ProcessedRecords != tt.processed {
				t.Errorf("expected processed %d, got %d", tt.processed, m.ProcessedRecords)
			}
			if m.EstimatedTimeRemaining != tt.remaining {
				t.Errorf("expected remaining %d, got %d", tt.remaining, m.EstimatedTimeRemaining)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	tc := []struct {
		seconds int
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{59, "59s"},
		{60, "1m 0s"},
		{125, "2m 5s"},
		{3600, "60m 0s"},
	}

	for _, tt := range tc {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tc := []struct {
		progress float64
		want     string
	}{
		{0, "0.0%"},
		{0.42, "42.0%"},
		{0.5, "50.0%"},
		{1, "100.0%"},
	}

	for _, tt := range tc {
		if got := FormatPercent(tt.progress); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestState(t *testing.T) {
	t.Run("NewState", func(t *testing.T) {
		s := NewState()

		if s.Status.State != models.StateInitialized || s.Status.Progress != 0 {
			t.Errorf("expected INITIALIZED at 0, got %+v", s.Status)
		}
		if s.Metrics != (models.DerivedMetrics{}) {
			t.Errorf("expected zero metrics before first poll, got %+v", s.Metrics)
		}
		if s.Err != "" {
			t.Errorf("expected no error, got %q", s.Err)
		}
		if s.Control() != models.ControlStart {
			t.Errorf("expected start control, got %v", s.Control())
		}
	})

	t.Run("ApplyPoll", func(t *testing.T) {
		t.Run("Success Replaces Status And Metrics", func(t *testing.T) {
			s := NewState().ApplyPoll(models.MigrationStatus{State: models.StateMigrating, Progress: 0.2}, nil)

			if s.Status.State != models.StateMigrating || s.Status.Progress != 0.2 {
				t.Errorf("unexpected status %+v", s.Status)
			}
			if s.Metrics.ProcessedRecords != 20 || s.Metrics.EstimatedTimeRemaining != 20 {
				t.Errorf("unexpected metrics %+v", s.Metrics)
			}
			if s.Control() != models.ControlPause {
				t.Errorf("expected pause control, got %v", s.Control())
			}
		})

		t.Run("Failure Keeps Previous Status", func(t *testing.T) {
			prev := NewState().ApplyPoll(models.MigrationStatus{State: models.StatePaused, Progress: 0.5}, nil)
			s := prev.ApplyPoll(models.MigrationStatus{}, errors.New("boom"))

			if s.Status != prev.Status || s.Metrics != prev.Metrics {
				t.Errorf("expected status and metrics unchanged, got %+v", s)
			}
			if s.Err != MsgFetchFailed {
				t.Errorf("expected %q, got %q", MsgFetchFailed, s.Err)
			}
		})

		t.Run("Success Does Not Clear Error", func(t *testing.T) {
			s := NewState().
				ApplyPoll(models.MigrationStatus{}, errors.New("boom")).
				ApplyPoll(models.MigrationStatus{State: models.StateCompleted, Progress: 1}, nil)

			if s.Err != MsgFetchFailed {
				t.Errorf("expected error to persist, got %q", s.Err)
			}
			if s.Status.State != models.StateCompleted {
				t.Errorf("expected COMPLETED, got %s", s.Status.State)
			}
		})

		t.Run("Unknown State Is Stored", func(t *testing.T) {
			s := NewState().ApplyPoll(models.MigrationStatus{State: "ROLLING_BACK", Progress: 0.3}, nil)

			if s.Status.State != "ROLLING_BACK" {
				t.Errorf("expected unknown state to be stored, got %s", s.Status.State)
			}
			if s.Control() != models.ControlNone {
				t.Errorf("expected no control, got %v", s.Control())
			}
		})
	})

	t.Run("ApplyAction", func(t *testing.T) {
		tc := []struct {
			control models.Control
			want    string
		}{
			{models.ControlStart, MsgStartFailed},
			{models.ControlPause, MsgPauseFailed},
			{models.ControlResume, MsgResumeFailed},
		}

		for _, tt := range tc {
			t.Run(tt.control.String(), func(t *testing.T) {
				prev := NewState().ApplyPoll(models.MigrationStatus{State: models.StateMigrating, Progress: 0.4}, nil)

				ok := prev.ApplyAction(tt.control, nil)
				if ok != prev {
					t.Errorf("expected success to change nothing, got %+v", ok)
				}

				failed := prev.ApplyAction(tt.control, errors.New("connection refused"))
				if failed.Err != tt.want {
					t.Errorf("expected %q, got %q", tt.want, failed.Err)
				}
				if failed.Status != prev.Status {
					t.Errorf("expected status untouched, got %+v", failed.Status)
				}
			})
		}

		t.Run("Latest Error Wins", func(t *testing.T) {
			s := NewState().
				ApplyAction(models.ControlStart, errors.New("x")).
				ApplyPoll(models.MigrationStatus{}, errors.New("y"))

			if s.Err != MsgFetchFailed {
				t.Errorf("expected latest error, got %q", s.Err)
			}
		})
	})
}
