package authcore_test

import (
	"context"
	"testing"
	"time"

	authcore "github.com/tendera/authcore"
)

// openChallenge logs in an OTP-enabled user and returns the user ID and
// the delivered code.
func openChallenge(t *testing.T, f *fixture) (string, string) {
	t.Helper()
	in := validRegistration()
	f.register(t, in, true)
	res, err := f.engine.Login(context.Background(), in.Email, in.Password, "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return res.Challenge.UserID, f.lastOTP(t)
}

func TestVerifyOTPIssuesSession(t *testing.T) {
	f := newFixture(t)
	userID, code := openChallenge(t, f)

	sess, err := f.engine.VerifyOTP(context.Background(), userID, code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("no token issued")
	}
	if _, err := f.engine.Authenticate(context.Background(), sess.Token); err != nil {
		t.Fatalf("authenticate issued token: %v", err)
	}
}

func TestVerifyOTPIsSingleUse(t *testing.T) {
	f := newFixture(t)
	userID, code := openChallenge(t, f)

	if _, err := f.engine.VerifyOTP(context.Background(), userID, code); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	// The same correct code again: the challenge was consumed, so this
	// reports a missing request, not a wrong code.
	if _, err := f.engine.VerifyOTP(context.Background(), userID, code); err != authcore.ErrOTPNotRequested {
		t.Fatalf("replay: got %v, want ErrOTPNotRequested", err)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	f := newFixture(t)
	userID, code := openChallenge(t, f)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		if _, err := f.engine.VerifyOTP(context.Background(), userID, wrong); err != authcore.ErrOTPInvalid {
			t.Fatalf("guess %d: got %v, want ErrOTPInvalid", i+1, err)
		}
	}
	// Wrong guesses do not burn the challenge.
	if _, err := f.engine.VerifyOTP(context.Background(), userID, code); err != nil {
		t.Fatalf("correct code after wrong guesses: %v", err)
	}
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	f := newFixture(t)
	userID, code := openChallenge(t, f)

	f.clock.Advance(10*time.Minute + time.Second)
	if _, err := f.engine.VerifyOTP(context.Background(), userID, code); err != authcore.ErrOTPInvalid {
		t.Fatalf("expired code: got %v, want ErrOTPInvalid", err)
	}
}

func TestVerifyOTPWithoutChallenge(t *testing.T) {
	f := newFixture(t)
	sess := f.register(t, validRegistration(), true)

	if _, err := f.engine.VerifyOTP(context.Background(), sess.User.ID, "123456"); err != authcore.ErrOTPNotRequested {
		t.Fatalf("got %v, want ErrOTPNotRequested", err)
	}
}

func TestVerifyOTPUnknownUser(t *testing.T) {
	f := newFixture(t)
	if _, err := f.engine.VerifyOTP(context.Background(), "no-such-user", "123456"); err != authcore.ErrUserNotFound {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}
