// Package email delivers transactional mail for the service: confirmation
// links on registration and reset links on password recovery.
//
// Two EmailSender implementations are provided. The Postmark-backed client is
// used in production; DevSender writes each message to disk as an HTML file
// plus JSON metadata so that local development never needs live credentials.
package email
