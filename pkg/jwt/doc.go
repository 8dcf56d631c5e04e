// Package jwt provides HMAC-SHA256 signing and verification of JSON Web
// Tokens (the RFC 7519 subset this service needs).
//
// Tokens are self-contained: once issued they cannot be revoked before
// expiry except by rotating the signing key. Signature comparison is
// constant-time, and the header algorithm is pinned to HS256 to rule out
// algorithm confusion attacks.
package jwt
