package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/services"
	"github.com/desertthunder/lmx/internal/shared"
)

// Coordinator is the migration engine behind [MigrationHandler].
type Coordinator interface {
	Status(ctx context.Context) (models.MigrationStatus, error)
	Start(ctx context.Context) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
}

// MigrationHandler serves the LiveMigrate control API:
//
//	GET  /livemigrate/api/v1/migration/status
//	POST /livemigrate/api/v1/migration/start
//	POST /livemigrate/api/v1/migration/pause
//	POST /livemigrate/api/v1/migration/resume
type MigrationHandler struct {
	coord  Coordinator
	logger *log.Logger
}

var _ Handler = (*MigrationHandler)(nil)

// NewMigrationHandler creates a handler backed by coord.
func NewMigrationHandler(coord Coordinator, logger *log.Logger) *MigrationHandler {
	return &MigrationHandler{coord: coord, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *MigrationHandler) Routes() []string {
	return []string{services.StatusPath, services.StartPath, services.PausePath, services.ResumePath}
}

// ServeHTTP dispatches on path, enforcing GET for status and POST for controls.
func (h *MigrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	want := http.MethodPost
	if r.URL.Path == services.StatusPath {
		want = http.MethodGet
	}
	if r.Method != want {
		w.Header().Set("Allow", want)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch r.URL.Path {
	case services.StatusPath:
		h.status(w, r)
	case services.StartPath:
		h.start(w, r)
	case services.PausePath:
		h.pause(w, r)
	case services.ResumePath:
		h.resume(w, r)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (h *MigrationHandler) status(w http.ResponseWriter, r *http.Request) {
	status, err := h.coord.Status(r.Context())
	if err != nil {
		h.logger.Error("failed to read migration status", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read migration status")
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

func (h *MigrationHandler) start(w http.ResponseWriter, r *http.Request) {
	err := h.coord.Start(r.Context())
	switch {
	case err == nil:
		WriteMessage(w, http.StatusOK, "Migration started successfully")
	case errors.Is(err, shared.ErrMigrationInProgress):
		WriteError(w, http.StatusBadRequest, "Migration is already in progress")
	default:
		h.logger.Error("failed to start migration", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to start migration: "+err.Error())
	}
}

func (h *MigrationHandler) pause(w http.ResponseWriter, r *http.Request) {
	err := h.coord.Pause(r.Context())
	switch {
	case err == nil:
		WriteMessage(w, http.StatusOK, "Migration paused successfully")
	case errors.Is(err, shared.ErrNotRunning):
		WriteError(w, http.StatusBadRequest, "Migration is not in progress")
	default:
		h.logger.Error("failed to pause migration", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to pause migration: "+err.Error())
	}
}

func (h *MigrationHandler) resume(w http.ResponseWriter, r *http.Request) {
	err := h.coord.Resume(r.Context())
	switch {
	case err == nil:
		WriteMessage(w, http.StatusOK, "Migration resumed successfully")
	case errors.Is(err, shared.ErrNotPaused):
		WriteError(w, http.StatusBadRequest, "Migration is not paused")
	default:
		h.logger.Error("failed to resume migration", "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to resume migration: "+err.Error())
	}
}

// HealthHandler answers {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
