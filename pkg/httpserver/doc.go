// Package httpserver wraps net/http with graceful shutdown, env-driven
// timeouts, and a probe handler for liveness and readiness checks.
//
// Run blocks until the context is cancelled or the process receives an
// interrupt/TERM signal, then drains in-flight requests within the configured
// shutdown deadline. Listen failures are wrapped with ErrStart, shutdown
// failures with ErrShutdown, so callers distinguish them with errors.Is.
package httpserver
