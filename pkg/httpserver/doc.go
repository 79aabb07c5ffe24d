// Package httpserver wraps net/http.Server with env-driven configuration,
// functional options, slog logging, graceful shutdown on context cancellation
// or SIGINT/SIGTERM, and a health-check handler for liveness and readiness
// probes.
package httpserver
