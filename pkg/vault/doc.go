// Package vault stores per-file content keys in an external secret
// custodian so key material never sits next to the ciphertext or in the
// primary database.
//
// The production implementation talks to HashiCorp Vault's KV v2 engine;
// keys are addressed by a logical path chosen by the caller and stored
// base64-encoded under a single "key" field. Store is an idempotent upsert,
// Fetch distinguishes a missing key (ErrKeyNotFound) from an unreachable
// custodian (ErrUnavailable), and Delete removes all versions and metadata.
//
// Memory provides an in-process implementation for tests and local
// development.
package vault
