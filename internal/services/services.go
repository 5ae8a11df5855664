// package services implements the HTTP client for the LiveMigrate migration API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/shared"
)

// Endpoint paths, relative to the backend origin.
const (
	APIPrefix  = "/livemigrate/api/v1"
	StatusPath = APIPrefix + "/migration/status"
	StartPath  = APIPrefix + "/migration/start"
	PausePath  = APIPrefix + "/migration/pause"
	ResumePath = APIPrefix + "/migration/resume"
)

// ControlPath returns the POST endpoint for c, or "" for [models.ControlNone].
func ControlPath(c models.Control) string {
	switch c {
	case models.ControlStart:
		return StartPath
	case models.ControlPause:
		return PausePath
	case models.ControlResume:
		return ResumePath
	default:
		return ""
	}
}

// MigrationClient is the backend surface the dashboard depends on.
type MigrationClient interface {
	// Status fetches the current migration status.
	// Fails on transport errors and on bodies that are not JSON.
	Status(ctx context.Context) (models.MigrationStatus, error)

	// Act issues the control request for c and ignores the response.
	// Fails only on transport errors.
	Act(ctx context.Context, c models.Control) error
}

// MigrationService implements [MigrationClient] on top of [APIService].
type MigrationService struct {
	api *APIService
}

var _ MigrationClient = (*MigrationService)(nil)

// NewMigrationService creates a client for the backend at baseURL.
func NewMigrationService(baseURL string, client *http.Client) *MigrationService {
	return &MigrationService{api: NewAPIService(baseURL, client)}
}

// API exposes the underlying raw transport.
func (m *MigrationService) API() *APIService { return m.api }

// Status performs GET /livemigrate/api/v1/migration/status.
//
// The HTTP status code is not inspected: any JSON object is decoded as a [models.MigrationStatus],
// so an error body or {} yields a status with whatever fields it carries. Other JSON values are rejected.
func (m *MigrationService) Status(ctx context.Context) (models.MigrationStatus, error) {
	resp, err := m.api.Get(ctx, StatusPath)
	if err != nil {
		return models.MigrationStatus{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !bytes.HasPrefix(bytes.TrimSpace(resp.Body), []byte("{")) {
		return models.MigrationStatus{}, fmt.Errorf("%w: status body is not a JSON object", shared.ErrInvalidResponse)
	}

	var status models.MigrationStatus
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return models.MigrationStatus{}, fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
	}

	return status, nil
}

// Act performs the POST for c. Non-2xx responses are not errors.
func (m *MigrationService) Act(ctx context.Context, c models.Control) error {
	path := ControlPath(c)
	if path == "" {
		return fmt.Errorf("%w: no endpoint for control %d", shared.ErrInvalidArgument, c)
	}

	if _, err := m.api.Post(ctx, path, nil); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, c, err)
	}
	return nil
}

// Start performs POST /livemigrate/api/v1/migration/start.
func (m *MigrationService) Start(ctx context.Context) error { return m.Act(ctx, models.ControlStart) }

// Pause performs POST /livemigrate/api/v1/migration/pause.
func (m *MigrationService) Pause(ctx context.Context) error { return m.Act(ctx, models.ControlPause) }

// Resume performs POST /livemigrate/api/v1/migration/resume.
func (m *MigrationService) Resume(ctx context.Context) error { return m.Act(ctx, models.ControlResume) }
