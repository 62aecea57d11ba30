// Package httputil provides the HTTP response helpers shared by the preview
// server handlers.
//
// # Responses
//
// [RespondJSON] writes a JSON body, [RespondError] maps a coded error from
// pkg/errors to its HTTP status and writes a JSON error body, and
// [RespondArtifact] writes rendered bytes with an ETag, answering 304 when
// the client already holds the same version.
//
// Error bodies have a fixed shape:
//
//	{"code": "ENTITY_NOT_FOUND", "message": "entity not found: ...", "request_id": "..."}
//
// # Request IDs
//
// [RequestID] is a middleware that assigns every request a fresh UUID,
// echoes it in the X-Request-ID header and stores it in the request context
// for [RequestIDFrom]. A client-supplied X-Request-ID is never trusted as
// the canonical ID.
package httputil
