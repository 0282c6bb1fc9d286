package authcore

import (
	"context"
	"fmt"
	"time"

	"github.com/tendera/authcore/internal/secret"
)

// Login checks credentials and either issues a session directly or,
// when the account has OTP enabled, opens an OTP challenge. Unknown
// email and wrong password produce the same error so callers cannot
// enumerate registered accounts.
func (e *Engine) Login(ctx context.Context, email, password string, override Channel) (*LoginResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if override != "" && !override.Valid() {
		return nil, invalidField("otpMethod", `must be "email" or "sms"`)
	}

	user, err := e.store.GetByEmailWithSecrets(ctx, email)
	if err != nil {
		if Classify(err) == KindNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, e.storeErr("lookup user", err)
	}

	ok, err := e.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	if !user.OTPEnabled {
		sess, err := e.issueSession(user)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Session: sess}, nil
	}

	channel := e.electChannel(user, override)
	code, err := e.openChallenge(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := e.deliver(ctx, user, channel, code); err != nil {
		// A code the user can never receive must not stay live.
		e.clearChallenge(ctx, user)
		e.log.Error("otp delivery failed", "userId", user.ID, "channel", channel, "err", err)
		return nil, fmt.Errorf("%w via %s", ErrDeliveryFailed, channel)
	}

	e.log.Info("otp challenge opened", "userId", user.ID, "channel", channel)
	return &LoginResult{Challenge: &Challenge{UserID: user.ID, Channel: channel}}, nil
}

// electChannel resolves the delivery channel: an explicit request wins,
// then the account's first configured method, then the engine default.
func (e *Engine) electChannel(user *User, override Channel) Channel {
	if override != "" {
		return override
	}
	if ch, ok := user.OTPMethods.Preferred(); ok {
		return ch
	}
	return e.config.OTP.DefaultChannel
}

// openChallenge stores a fresh hashed code on the account, replacing
// any code still outstanding, and returns the plaintext for delivery.
func (e *Engine) openChallenge(ctx context.Context, user *User) (string, error) {
	code, err := secret.NewOTP(e.config.OTP.Digits)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	user.OTPCodeHash = secret.HashOTP(code)
	user.OTPExpires = e.now().Add(e.config.OTP.TTL)
	if err := e.store.Save(ctx, user); err != nil {
		return "", e.storeErr("save otp challenge", err)
	}
	return code, nil
}

// clearChallenge drops any outstanding code. Best effort; a failure is
// logged but never surfaced, the code still expires on its own.
func (e *Engine) clearChallenge(ctx context.Context, user *User) {
	user.OTPCodeHash = nil
	user.OTPExpires = time.Time{}
	if err := e.store.Save(ctx, user); err != nil {
		e.log.Warn("failed to clear otp challenge", "userId", user.ID, "err", err)
	}
}

func (e *Engine) deliver(ctx context.Context, user *User, channel Channel, code string) error {
	if e.notifier == nil {
		return fmt.Errorf("no notifier configured")
	}
	ctx, cancel := context.WithTimeout(ctx, e.config.Notify.Timeout)
	defer cancel()

	switch channel {
	case ChannelSMS:
		return e.notifier.SendSMS(ctx, user.PhoneNumber, smsBody(code, e.config.OTP.TTL))
	default:
		return e.notifier.SendEmail(ctx, user.Email, "Your verification code", emailBody(code, e.config.OTP.TTL))
	}
}

func smsBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(ttl.Minutes()))
}

func emailBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your verification code is %s.\nIt expires in %d minutes. If you did not request it, ignore this message.", code, int(ttl.Minutes()))
}
