// Package files implements the encrypted file vault: batch upload, listing,
// streaming download, and deletion of per-user files.
//
// Every file is envelope-encrypted with its own random content key. The
// ciphertext goes to blob storage, the key goes to the external custodian,
// and the metadata row records only an opaque key reference. The primary
// database never holds key material.
//
// Multi-step operations are ordered so that a failure never leaves metadata
// pointing at a missing blob or key: metadata is written last on upload and
// removed first on delete. Custodian key deletion is best-effort; its
// failure is logged and never surfaced.
package files
