// Package authcore implements the OTP-gated authentication and
// session-issuance core of the tender management portal: registration,
// credential login with an optional one-time-passcode challenge delivered
// by email or SMS, OTP verification, password reset token lifecycle, and
// permission-based authorization.
//
// The package is storage- and transport-agnostic. Callers supply a
// [UserStore] (see store/memory, store/redis, store/postgres) and a
// [Notifier]; the [Engine] exposes the flows, and package middleware
// plugs them into an HTTP pipeline.
package authcore
