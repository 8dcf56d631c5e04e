// Package blob stores ciphertext blobs addressed by a storage path chosen
// by the caller.
//
// Two drivers are provided: Local for a directory on disk and S3 for Amazon
// S3 or S3-compatible services (MinIO, R2). Both operate on io streams so
// large files never have to fit in memory, and both treat Delete of a
// missing blob as a no-op since deletion must stay idempotent.
package blob
