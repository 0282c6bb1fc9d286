package authcore_test

import (
	"context"
	"testing"
	"time"

	authcore "github.com/tendera/authcore"
)

func TestForgotResetPasswordRoundTrip(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	f.register(t, in, false)

	raw, err := f.engine.ForgotPassword(context.Background(), in.Email)
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if raw == "" {
		t.Fatal("empty reset token")
	}

	f.clock.Advance(time.Minute)
	sess, err := f.engine.ResetPassword(context.Background(), raw, "brandnewpw")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := f.engine.Authenticate(context.Background(), sess.Token); err != nil {
		t.Fatalf("authenticate after reset: %v", err)
	}

	// Old password no longer works, new one does.
	if _, err := f.engine.Login(context.Background(), in.Email, in.Password, ""); err != authcore.ErrInvalidCredentials {
		t.Fatalf("old password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := f.engine.Login(context.Background(), in.Email, "brandnewpw", ""); err != nil {
		t.Fatalf("new password: %v", err)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newFixture(t)
	if _, err := f.engine.ForgotPassword(context.Background(), "nobody@example.com"); err != authcore.ErrUserNotFound {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}

func TestResetPasswordBogusToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, validRegistration(), false)

	if _, err := f.engine.ResetPassword(context.Background(), "deadbeef", "whatever1"); err != authcore.ErrResetTokenInvalid {
		t.Fatalf("got %v, want ErrResetTokenInvalid", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	f.register(t, in, false)

	raw, err := f.engine.ForgotPassword(context.Background(), in.Email)
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}

	f.clock.Advance(10*time.Minute + time.Second)
	if _, err := f.engine.ResetPassword(context.Background(), raw, "whatever1"); err != authcore.ErrResetTokenInvalid {
		t.Fatalf("expired token: got %v, want ErrResetTokenInvalid", err)
	}
}

func TestResetPasswordTokenIsSingleUse(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	f.register(t, in, false)

	raw, err := f.engine.ForgotPassword(context.Background(), in.Email)
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if _, err := f.engine.ResetPassword(context.Background(), raw, "brandnewpw"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := f.engine.ResetPassword(context.Background(), raw, "anothernew"); err != authcore.ErrResetTokenInvalid {
		t.Fatalf("reused token: got %v, want ErrResetTokenInvalid", err)
	}
}

func TestResetPasswordInvalidatesOldSessions(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	old := f.register(t, in, false)

	raw, err := f.engine.ForgotPassword(context.Background(), in.Email)
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}

	f.clock.Advance(time.Minute)
	fresh, err := f.engine.ResetPassword(context.Background(), raw, "brandnewpw")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := f.engine.Authenticate(context.Background(), old.Token); err != authcore.ErrPasswordChanged {
		t.Fatalf("pre-reset token: got %v, want ErrPasswordChanged", err)
	}
	if _, err := f.engine.Authenticate(context.Background(), fresh.Token); err != nil {
		t.Fatalf("post-reset token rejected: %v", err)
	}
}

func TestUpdatePasswordRequiresCurrent(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	sess := f.register(t, in, false)

	if _, err := f.engine.UpdatePassword(context.Background(), sess.User.ID, "wrongcurrent", "newpassword"); err != authcore.ErrPasswordMismatch {
		t.Fatalf("got %v, want ErrPasswordMismatch", err)
	}
}

func TestUpdatePasswordRejectsShortNew(t *testing.T) {
	f := newFixture(t)
	in := validRegistration()
	sess := f.register(t, in, false)

	_, err := f.engine.UpdatePassword(context.Background(), sess.User.ID, in.Password, "tiny")
	if authcore.Classify(err) != authcore.KindValidation {
		t.Fatalf("got %v, want a validation error", err)
	}
}
