// Package server provides the HTTP server for consul-service using Gin with
// h2c support.
//
// The server follows the component pattern so the bootstrap app can start it
// after service registration and stop it before deregistration.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - RequestID: request id generation and propagation into the logger context
//   - RequestLogger: request logging with duration tracking
//   - Metrics: Prometheus request counters, latency and in-flight gauge
//   - Recovery: panic recovery rendered as an INTERNAL_ERROR envelope
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: constant liveness response
//   - /ready: component health aggregation
//   - /info: build and version information
//   - /metrics: Prometheus exposition
//
// Unmatched routes answer 404 with the NOT_FOUND error envelope.
package server
