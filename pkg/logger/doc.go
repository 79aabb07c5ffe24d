// Package logger builds configured log/slog loggers.
//
// It provides an env-driven Config (level, format, service name), functional
// options for programmatic overrides, context extractors for request-scoped
// attributes such as request IDs, and a small set of typed attribute helpers
// used across the service.
package logger
