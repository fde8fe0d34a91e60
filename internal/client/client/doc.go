// Package client talks to the pinboard backend.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic gateway contracts (UserGateway, PinGateway,
//     LikeGateway, CommentGateway, combined as Client).
//  2. A concrete REST implementation (HTTPClient) that speaks JSON and
//     multipart, rate-limits outbound calls, tags each request with an
//     X-Request-ID and maps HTTP status codes to sentinel errors.
//  3. Local persistence bootstrap (OpenDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Every failure is classified as one of ErrInvalidCredentials, ErrConflict,
// ErrNotFound, ErrUnauthorized, ErrValidation or ErrUnavailable, or is the
// caller's own context error. Match with errors.Is.
//
// All operations accept context.Context and honor cancellation.
package client
