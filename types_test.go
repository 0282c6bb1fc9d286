package authcore

import (
	"encoding/json"
	"testing"
	"time"
)

func TestChannelListUnmarshalScalarAndArray(t *testing.T) {
	var single ChannelList
	if err := json.Unmarshal([]byte(`"email"`), &single); err != nil {
		t.Fatalf("scalar: %v", err)
	}
	if len(single) != 1 || single[0] != ChannelEmail {
		t.Fatalf("scalar decoded to %v", single)
	}

	var multi ChannelList
	if err := json.Unmarshal([]byte(`["sms","email"]`), &multi); err != nil {
		t.Fatalf("array: %v", err)
	}
	if len(multi) != 2 || multi[0] != ChannelSMS || multi[1] != ChannelEmail {
		t.Fatalf("array decoded to %v", multi)
	}
}

func TestChannelListValidate(t *testing.T) {
	if err := (ChannelList{ChannelEmail, ChannelSMS}).Validate(); err != nil {
		t.Fatalf("valid list rejected: %v", err)
	}
	if err := (ChannelList{"pigeon"}).Validate(); err == nil {
		t.Fatal("invalid channel accepted")
	}
	if err := (ChannelList{}).Validate(); err == nil {
		t.Fatal("empty list accepted")
	}
}

func TestStripSecrets(t *testing.T) {
	u := &User{
		ID:                   "u1",
		PasswordHash:         "$argon2id$...",
		OTPCodeHash:          []byte{1, 2},
		OTPExpires:           time.Now(),
		PasswordResetHash:    []byte{3, 4},
		PasswordResetExpires: time.Now(),
	}
	s := u.StripSecrets()
	if s.PasswordHash != "" || s.OTPCodeHash != nil || s.PasswordResetHash != nil {
		t.Fatal("secrets survived StripSecrets")
	}
	if !s.OTPExpires.IsZero() || !s.PasswordResetExpires.IsZero() {
		t.Fatal("expiry timestamps survived StripSecrets")
	}
	// The original is untouched.
	if u.PasswordHash == "" || u.OTPCodeHash == nil {
		t.Fatal("StripSecrets mutated the receiver")
	}
}

func TestOTPChallengeOpen(t *testing.T) {
	u := &User{}
	if u.OTPChallengeOpen() {
		t.Fatal("open challenge on empty user")
	}
	u.OTPCodeHash = []byte{1}
	u.OTPExpires = time.Now().Add(time.Minute)
	if !u.OTPChallengeOpen() {
		t.Fatal("challenge not reported open")
	}
}
