// Package errors provides the structured error type shared by every layer of
// the service. Each AppError carries a machine-readable code and the HTTP
// status it maps to, so handlers can render failures without inspecting causes.
package errors
