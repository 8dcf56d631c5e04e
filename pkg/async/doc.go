// Package async provides typed futures and a bounded worker pool.
//
// The pool caps how many CPU-bound jobs (password hashing, stream
// encryption) run at once so a burst of requests cannot saturate every
// core; request handlers submit work and await the future. Submission never
// blocks the caller: the goroutine waits for a pool slot itself and honors
// context cancellation while waiting.
package async
