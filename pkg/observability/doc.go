// Package observability provides structured logging, Prometheus metrics,
// health probes and graceful shutdown for the taghive API.
//
// The logger is a thin wrapper over log/slog emitting JSON, with request-id
// plumbing through context. Metrics live on a caller-owned registry so tests
// never fight over the global default. Health probes and the metrics handler
// are served on a separate ops port, away from the authenticated API.
package observability
