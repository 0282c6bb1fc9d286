// Package token issues and verifies the signed session tokens that
// establish authentication after login, OTP verification, or password
// reset. Tokens are HS256 JWTs embedding the user identifier and the
// issuance time; the issuance time is what lets the session layer
// invalidate tokens that predate a password change.
package token
