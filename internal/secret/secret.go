// Package secret generates and hashes the short-lived secrets of the
// authentication flows: the 6-digit OTP and the password-reset token.
// Only hashes are ever persisted; hashing here is fast (SHA-256) rather
// than adaptive because the secrets are high-entropy or short-lived and
// single-use, unlike passwords.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// ResetTokenBytes is the entropy of a reset token (256 bits).
const ResetTokenBytes = 32

// NewOTP returns a uniformly random decimal code of the given length,
// left-zero-padded ("000000" through "999999" for six digits).
func NewOTP(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid otp digits")
	}

	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}

// HashOTP returns the SHA-256 digest of the code.
func HashOTP(code string) []byte {
	sum := sha256.Sum256([]byte(code))
	return sum[:]
}

// NewResetToken returns a fresh reset token: the hex-encoded raw value
// handed to the user (the bearer secret) and the SHA-256 digest to
// persist. The stored digest alone can never authenticate; the system
// must receive the raw value and hash it again to compare.
func NewResetToken() (raw string, hash []byte, err error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, err
	}

	raw = hex.EncodeToString(buf)
	return raw, HashResetToken(raw), nil
}

// HashResetToken returns the SHA-256 digest of the raw token value.
func HashResetToken(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}

// Equal compares two digests in constant time.
func Equal(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}
