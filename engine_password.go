package authcore

import (
	"context"
	"time"

	"github.com/tendera/authcore/internal/secret"
)

// ForgotPassword opens a password-reset window for the account and
// returns the raw token. Only the SHA-256 of the token is stored; the
// raw value is the caller's to deliver.
func (e *Engine) ForgotPassword(ctx context.Context, email string) (string, error) {
	if e == nil || e.store == nil {
		return "", ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" {
		return "", invalidField("email", "required")
	}

	user, err := e.store.GetByEmailWithSecrets(ctx, email)
	if err != nil {
		if Classify(err) == KindNotFound {
			return "", ErrUserNotFound
		}
		return "", e.storeErr("lookup user", err)
	}

	raw, hash, err := secret.NewResetToken()
	if err != nil {
		return "", e.storeErr("generate reset token", err)
	}

	user.PasswordResetHash = hash
	user.PasswordResetExpires = e.now().Add(e.config.Reset.TTL)
	if err := e.store.Save(ctx, user); err != nil {
		return "", e.storeErr("save reset token", err)
	}

	e.log.Info("password reset requested", "userId", user.ID)
	return raw, nil
}

// ResetPassword redeems a reset token. The lookup is by token hash with
// the expiry folded in, so an expired token is indistinguishable from a
// bogus one. A successful reset stamps PasswordChangedAt, which retires
// every session token issued before this moment, then signs in directly.
func (e *Engine) ResetPassword(ctx context.Context, rawToken, newPassword string) (*Session, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if rawToken == "" {
		return nil, ErrResetTokenInvalid
	}

	now := e.now()
	user, err := e.store.GetByResetTokenHash(ctx, secret.HashResetToken(rawToken), now)
	if err != nil {
		if Classify(err) == KindNotFound {
			return nil, ErrResetTokenInvalid
		}
		return nil, e.storeErr("lookup reset token", err)
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return nil, invalidField("password", err.Error())
	}

	user.PasswordHash = hash
	user.PasswordChangedAt = now
	user.PasswordResetHash = nil
	user.PasswordResetExpires = time.Time{}
	if err := e.store.Save(ctx, user); err != nil {
		return nil, e.storeErr("save new password", err)
	}

	e.log.Info("password reset completed", "userId", user.ID)
	return e.issueSession(user)
}

// UpdatePassword changes the password of an authenticated user after
// re-proving the current one. The fresh session token is issued at the
// same instant PasswordChangedAt is stamped, so it stays valid while
// all earlier tokens are retired.
func (e *Engine) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (*Session, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.store.GetByIDWithSecrets(ctx, userID)
	if err != nil {
		if Classify(err) == KindNotFound {
			return nil, ErrUserNotFound
		}
		return nil, e.storeErr("load user", err)
	}

	ok, err := e.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrPasswordMismatch
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return nil, invalidField("password", err.Error())
	}

	user.PasswordHash = hash
	user.PasswordChangedAt = e.now()
	if err := e.store.Save(ctx, user); err != nil {
		return nil, e.storeErr("save new password", err)
	}

	e.log.Info("password updated", "userId", user.ID)
	return e.issueSession(user)
}
