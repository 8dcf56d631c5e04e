// Package totp implements RFC 6238 time-based one-time passwords used as a
// second authentication factor.
//
// Secrets are 160-bit random values encoded as unpadded Base32. Enrollment
// descriptors follow the otpauth:// Key Uri Format understood by
// authenticator apps. Validation accepts the current 30-second step plus one
// step of clock skew in either direction.
//
// The package does not track consumed codes: a code that validated once will
// validate again within the same time step. Callers that need single-use
// semantics must layer replay tracking on top.
package totp
