// Package auth implements account lifecycle and session management:
// registration with email confirmation, password login with optional TOTP
// second factor, purpose-scoped token issuance and verification, password
// reset and change, and resolution of the current user from a request
// credential.
//
// Tokens are self-contained HMAC-signed claims. A token carries a purpose
// tag (session, email_confirm, password_reset) and is only accepted by the
// operation matching that purpose. Session tokens additionally carry an
// issuer claim that must match the configured issuer. There is no revocation
// before expiry; invalidation requires secret rotation.
//
// The session credential is read from the session cookie first; the
// Authorization Bearer header is used only when no cookie is present.
package auth
