package models

import (
	"encoding/json"
	"testing"
)

func TestControlFor(t *testing.T) {
	tc := []struct {
		state MigrationState
		want  Control
	}{
		{StateInitialized, ControlStart},
		{StateMigrating, ControlPause},
		{StatePaused, ControlResume},
		{StateCompleted, ControlNone},
		{StateError, ControlNone},
		{StatePreparing, ControlNone},
		{StateValidating, ControlNone},
		{StateSwitching, ControlNone},
		{MigrationState("SOMETHING_ELSE"), ControlNone},
		{MigrationState(""), ControlNone},
	}

	for _, tt := range tc {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := ControlFor(tt.state); got != tt.want {
				t.Errorf("ControlFor(%q) = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestParseControl(t *testing.T) {
	for _, c := range []Control{ControlStart, ControlPause, ControlResume} {
		got, ok := ParseControl(c.String())
		if !ok || got != c {
			t.Errorf("ParseControl(%q) = %v, %v", c.String(), got, ok)
		}
	}

	if _, ok := ParseControl("stop"); ok {
		t.Error("expected unknown action to be rejected")
	}
}

func TestMigrationStatus(t *testing.T) {
	t.Run("Decodes Backend Body", func(t *testing.T) {
		var status MigrationStatus
		if err := json.Unmarshal([]byte(`{"state":"MIGRATING","progress":0.2}`), &status); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.State != StateMigrating {
			t.Errorf("expected MIGRATING, got %s", status.State)
		}
		if status.Progress != 0.2 {
			t.Errorf("expected progress 0.2, got %v", status.Progress)
		}
	})

	t.Run("Unknown State Is Kept Verbatim", func(t *testing.T) {
		var status MigrationStatus
		if err := json.Unmarshal([]byte(`{"state":"ROLLING_BACK","progress":1}`), &status); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.State != "ROLLING_BACK" {
			t.Errorf("expected raw state to be kept, got %s", status.State)
		}
		if status.State.Valid() {
			t.Error("expected unknown state to be invalid")
		}
	})

	t.Run("Initial Status", func(t *testing.T) {
		status := InitialStatus()
		if status.State != StateInitialized || status.Progress != 0 {
			t.Errorf("unexpected initial status: %+v", status)
		}
	})
}
