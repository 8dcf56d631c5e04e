package httpserver

import "errors"

var (
	// ErrStart reports a failure to bind or serve.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown reports a failed graceful shutdown.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")
)
