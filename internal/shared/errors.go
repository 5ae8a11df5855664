package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest      = fmt.Errorf("API request failed")
	ErrInvalidResponse = fmt.Errorf("invalid response body")

	// Simulator errors
	ErrMigrationInProgress = fmt.Errorf("migration already in progress")
	ErrStateNotFound       = fmt.Errorf("migration state not found")
	ErrNotRunning          = fmt.Errorf("migration is not running")
	ErrNotPaused           = fmt.Errorf("migration is not paused")

	// Dashboard errors
	ErrControlUnavailable = fmt.Errorf("control not available in current state")
	ErrSessionClosed      = fmt.Errorf("dashboard session closed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
