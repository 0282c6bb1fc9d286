package authcore

import (
	"context"
	"time"

	"github.com/tendera/authcore/internal/secret"
)

// VerifyOTP completes an OTP-gated login. The code is single use: a
// correct code consumes the challenge before the session is issued, so
// replaying it reports that no request is outstanding rather than that
// the code was wrong.
func (e *Engine) VerifyOTP(ctx context.Context, userID, code string) (*Session, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, invalidField("userId", "required")
	}
	if code == "" {
		return nil, invalidField("otp", "required")
	}

	user, err := e.store.GetByIDWithSecrets(ctx, userID)
	if err != nil {
		if Classify(err) == KindNotFound {
			return nil, ErrUserNotFound
		}
		return nil, e.storeErr("load user for otp", err)
	}

	if !user.OTPChallengeOpen() {
		return nil, ErrOTPNotRequested
	}

	// Wrong and expired collapse into one answer; a caller holding a
	// stale code learns nothing about whether it ever matched.
	if e.now().After(user.OTPExpires) || !secret.Equal(secret.HashOTP(code), user.OTPCodeHash) {
		return nil, ErrOTPInvalid
	}

	// Consume before issuing; a code that cannot be retired must not
	// open a session.
	user.OTPCodeHash = nil
	user.OTPExpires = time.Time{}
	if err := e.store.Save(ctx, user); err != nil {
		return nil, e.storeErr("consume otp", err)
	}

	e.log.Info("otp verified", "userId", user.ID)
	return e.issueSession(user)
}
