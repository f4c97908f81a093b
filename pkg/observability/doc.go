// Package observability provides structured logging and Prometheus metrics
// for the conference-management core.
//
// Logging is JSON via log/slog, with context plumbing for request and
// account identifiers. Metrics cover authentication outcomes, authorization
// denials, workflow transitions, and cache effectiveness.
package observability
