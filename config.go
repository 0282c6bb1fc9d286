package authcore

import (
	"errors"
	"time"
)

// Config carries every tunable of the authentication core. Obtain a
// baseline with DefaultConfig and override what the deployment needs;
// Builder.Build validates the result.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	OTP      OTPConfig
	Reset    ResetConfig
	Notify   NotifyConfig
}

// TokenConfig configures session token issuance.
type TokenConfig struct {
	// Secret signs HS256 tokens. Required, >= 32 bytes.
	Secret []byte
	// TTL is the session token lifetime.
	TTL time.Duration
	// Issuer is embedded and enforced when non-empty.
	Issuer string
}

// PasswordConfig holds the argon2id cost parameters.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// OTPConfig configures the login challenge.
type OTPConfig struct {
	// Digits is the code length; 6 per the portal contract.
	Digits int
	// TTL is the challenge lifetime from issuance.
	TTL time.Duration
	// DefaultChannel is used when the user has no configured method.
	DefaultChannel Channel
}

// ResetConfig configures the password-reset token lifecycle.
type ResetConfig struct {
	TTL time.Duration
}

// NotifyConfig bounds outbound delivery calls. The login response must
// reflect whether the OTP was deliverable, so the call is awaited but
// never allowed to hang the request.
type NotifyConfig struct {
	Timeout time.Duration
}

// DefaultConfig returns the production baseline: 30-day sessions,
// 6-digit OTP with a 10-minute expiry delivered by SMS, 10-minute reset
// tokens, 10-second delivery timeout, argon2id at 64 MiB / t=3 / p=2.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:    30 * 24 * time.Hour,
			Issuer: "tendera",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		OTP: OTPConfig{
			Digits:         6,
			TTL:            10 * time.Minute,
			DefaultChannel: ChannelSMS,
		},
		Reset: ResetConfig{
			TTL: 10 * time.Minute,
		},
		Notify: NotifyConfig{
			Timeout: 10 * time.Second,
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.Token.Secret) < 32 {
		return errors.New("token secret must be at least 32 bytes")
	}
	if cfg.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if cfg.OTP.Digits < 4 || cfg.OTP.Digits > 10 {
		return errors.New("otp digits must be between 4 and 10")
	}
	if cfg.OTP.TTL <= 0 {
		return errors.New("otp TTL must be positive")
	}
	if !cfg.OTP.DefaultChannel.Valid() {
		return errors.New("otp default channel must be email or sms")
	}
	if cfg.Reset.TTL <= 0 {
		return errors.New("reset TTL must be positive")
	}
	if cfg.Notify.Timeout <= 0 {
		return errors.New("notify timeout must be positive")
	}
	return nil
}
