package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/lmx/internal/models"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestCollector(t *testing.T) {
	t.Run("Polls", func(t *testing.T) {
		c := New()
		c.ObservePoll(models.MigrationStatus{State: models.StateMigrating, Progress: 0.25}, nil)
		c.ObservePoll(models.MigrationStatus{}, errors.New("refused"))
		c.ObservePoll(models.MigrationStatus{}, errors.New("refused"))

		out := scrape(t, c)
		for _, want := range []string{
			`lmx_status_polls_total{result="ok"} 1`,
			`lmx_status_polls_total{result="error"} 2`,
			`lmx_migration_progress 0.25`,
			`lmx_migration_state{state="MIGRATING"} 1`,
			`lmx_migration_state{state="PAUSED"} 0`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in scrape output", want)
			}
		}
	})

	t.Run("Actions", func(t *testing.T) {
		c := New()
		c.ObserveAction(models.ControlStart, nil)
		c.ObserveAction(models.ControlPause, errors.New("refused"))

		out := scrape(t, c)
		for _, want := range []string{
			`lmx_control_requests_total{action="start",result="ok"} 1`,
			`lmx_control_requests_total{action="pause",result="error"} 1`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in scrape output", want)
			}
		}
	})

	t.Run("Batches", func(t *testing.T) {
		c := New()
		c.ObserveBatch(10, 3*time.Second)
		c.ObserveBatch(5, time.Second)

		out := scrape(t, c)
		if !strings.Contains(out, "lmx_simulator_records_total 15") {
			t.Errorf("expected records total in output")
		}
		if !strings.Contains(out, "lmx_simulator_batch_duration_seconds_count 2") {
			t.Errorf("expected batch histogram in output")
		}
	})

	t.Run("Independent Registries", func(t *testing.T) {
		a, b := New(), New()
		a.ObserveAction(models.ControlResume, nil)

		if strings.Contains(scrape(t, b), `action="resume"`) {
			t.Error("expected collectors not to share state")
		}
	})
}
