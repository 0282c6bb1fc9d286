package authcore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned for both an unknown email and a
	// password mismatch so that callers cannot tell which part was wrong.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrAccountDeactivated is returned when the account exists but has
	// been deactivated by an administrator.
	ErrAccountDeactivated = errors.New("account deactivated")
	// ErrOTPNotRequested is returned by VerifyOTP when no challenge is
	// open for the user. Distinct from ErrOTPInvalid: a consumed or
	// never-issued code is a caller mistake, not a failed guess.
	ErrOTPNotRequested = errors.New("no OTP request found")
	// ErrOTPInvalid collapses "wrong code" and "expired code" into one
	// externally visible failure.
	ErrOTPInvalid = errors.New("invalid or expired OTP")
	// ErrResetTokenInvalid collapses "unknown token" and "expired token".
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
	// ErrPasswordMismatch is returned by UpdatePassword when the current
	// password does not verify.
	ErrPasswordMismatch = errors.New("current password is incorrect")
	// ErrAuthRequired is returned when no bearer token or cookie is
	// present on a protected request.
	ErrAuthRequired = errors.New("authentication required")
	// ErrTokenInvalid covers malformed, expired, and wrongly signed
	// session tokens without distinguishing them.
	ErrTokenInvalid = errors.New("invalid or expired token")
	// ErrUserGone is returned when a valid token references a user that
	// has been deleted since issuance.
	ErrUserGone = errors.New("user no longer exists")
	// ErrPasswordChanged is returned when the token predates the user's
	// last password change.
	ErrPasswordChanged = errors.New("password changed, log in again")
	// ErrPermissionDenied is returned by the authorization guards.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUserNotFound is the sentinel user stores return for missing
	// records.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by user stores on a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrEmployeeIDTaken is returned by user stores on a duplicate
	// employee identifier.
	ErrEmployeeIDTaken = errors.New("employee id already registered")
	// ErrSelfDelete is returned when an administrator attempts to delete
	// their own account.
	ErrSelfDelete = errors.New("cannot delete own account")
	// ErrDeliveryFailed is returned when the OTP could not be delivered.
	// Deliberately distinct from ErrInvalidCredentials so clients can
	// distinguish "try again" from "check your password".
	ErrDeliveryFailed = errors.New("verification code delivery failed")
	// ErrEngineNotReady is returned when the engine is used before Build.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ValidationError reports a malformed or missing input field. Unlike the
// credential errors above, validation messages are specific and
// field-targeted to aid legitimate callers.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Kind buckets an error for boundary translation (HTTP status mapping).
type Kind int

const (
	// KindServer is the fallback for unrecognized errors; native store or
	// network errors must never leak their own shape past the engine.
	KindServer Kind = iota
	// KindValidation maps to 400.
	KindValidation
	// KindAuthentication maps to 401.
	KindAuthentication
	// KindAuthorization maps to 403.
	KindAuthorization
	// KindNotFound maps to 404.
	KindNotFound
	// KindDelivery maps to 500 but keeps its message, so clients can
	// retry instead of re-entering credentials.
	KindDelivery
)

// Classify maps an error returned by the engine or the guards to its
// Kind. Unrecognized errors classify as KindServer.
func Classify(err error) Kind {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, ErrOTPNotRequested),
		errors.Is(err, ErrResetTokenInvalid),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrEmployeeIDTaken),
		errors.Is(err, ErrSelfDelete):
		return KindValidation
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrAccountDeactivated),
		errors.Is(err, ErrOTPInvalid),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrAuthRequired),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrUserGone),
		errors.Is(err, ErrPasswordChanged):
		return KindAuthentication
	case errors.Is(err, ErrPermissionDenied):
		return KindAuthorization
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrDeliveryFailed):
		return KindDelivery
	default:
		return KindServer
	}
}
