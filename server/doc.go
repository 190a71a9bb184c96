// Package server is the HTTP adapter for the transcription service. It
// serves a Gin engine behind h2c and exposes the four core operations as
// JSON endpoints.
//
// # Middleware
//
// Applied around the root mux (server/middleware), outermost first:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request ID generation and propagation
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body cap (60MB by default)
//   - RateLimit: per-client token bucket on /api/
//   - RequestLogger: request logging with duration tracking
//
// # Routes
//
//   - POST /api/transcribe/file: multipart field "audio"
//   - POST /api/transcribe/live: multipart field "audio" plus optional "format"
//   - POST /api/youtube/transcribe: JSON {"videoUrl": "..."}
//   - GET  /api/youtube/metadata?url=...
//   - /health, /ready, /alive, /metrics, /version
package server
