// Package server provides HTTP routing, middleware and the LiveMigrate control API handler.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Standard] returns the stack both servers use: request IDs (UUID v4), structured request logging,
// panic recovery and a token-bucket rate limit.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with per-path method tables.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Migration API
//
// [MigrationHandler] exposes a [Coordinator] over the four LiveMigrate endpoints. Control responses are
// {"message": ...} on success and {"error": ...} otherwise; starting a running migration answers 400.
//
// [Serve] runs any handler until its context is cancelled and then shuts down gracefully.
package server
