// Package services implements the HTTP client for the LiveMigrate migration API.
//
// # Endpoints
//
// The backend exposes four endpoints under /livemigrate/api/v1:
//
//	GET  /migration/status  → {"state": string, "progress": number}
//	POST /migration/start   → response ignored
//	POST /migration/pause   → response ignored
//	POST /migration/resume  → response ignored
//
// # Layers
//
// [APIService] is a raw transport: it sends a request and returns the status code, headers and body
// without interpretation. The `lmx api get|post` commands print its responses directly.
//
// [MigrationService] implements [MigrationClient] on top of it with the dashboard's failure rules:
//   - Status fails on transport errors or a body that is not JSON; the status code is not inspected.
//   - Act (start/pause/resume) fails only on transport errors; the response is discarded.
//
// # Error Handling
//
// Errors wrap sentinels from the shared package:
//   - [shared.ErrAPIRequest] : the request could not be sent or its body read
//   - [shared.ErrInvalidResponse] : the status body was not valid JSON
//   - [shared.ErrInvalidArgument] : [models.ControlNone] has no endpoint
package services
