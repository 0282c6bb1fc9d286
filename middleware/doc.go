// Package middleware provides net/http middleware that authenticates
// requests against an authcore.Engine and enforces permission and role
// requirements on the authenticated identity.
package middleware
