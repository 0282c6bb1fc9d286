package password

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// MinLength is the minimum raw password length before hashing.
const MinLength = 6

const algorithm = "argon2id"

var (
	// ErrTooShort is returned for passwords under MinLength characters.
	ErrTooShort = fmt.Errorf("password must be at least %d characters", MinLength)

	errMalformedDigest = errors.New("malformed password digest")
)

// Params are the argon2id cost parameters. Memory is in KiB. The
// defaults chosen by the caller should give a work factor comparable to
// bcrypt cost 12 on current hardware.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Hasher hashes and verifies passwords with fixed parameters. Safe for
// concurrent use.
type Hasher struct {
	params Params
}

// New validates the parameters and returns a Hasher.
func New(p Params) (*Hasher, error) {
	switch {
	case p.Memory < 8*1024:
		return nil, errors.New("password memory must be >= 8192 KiB")
	case p.Time < 1:
		return nil, errors.New("password time must be >= 1")
	case p.Parallelism < 1:
		return nil, errors.New("password parallelism must be >= 1")
	case p.SaltLength < 16:
		return nil, errors.New("password salt length must be >= 16")
	case p.KeyLength < 16:
		return nil, errors.New("password key length must be >= 16")
	}
	return &Hasher{params: p}, nil
}

// Hash derives a PHC-formatted argon2id digest from plain. The digest
// embeds the parameters and salt, so Verify needs no configuration.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) < MinLength {
		return "", ErrTooShort
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		[]byte(plain),
		salt,
		h.params.Time,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithm,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches the digest. The comparison is
// constant-time; an error indicates a digest this package cannot parse,
// never a mismatch.
func (h *Hasher) Verify(plain, digest string) (bool, error) {
	params, salt, key, err := decodeDigest(digest)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(plain),
		salt,
		params.Time,
		params.Memory,
		params.Parallelism,
		uint32(len(key)),
	)

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func decodeDigest(digest string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithm {
		return p, nil, nil, errMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errMalformedDigest
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return p, nil, nil, errMalformedDigest
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, errMalformedDigest
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 {
		return p, nil, nil, errMalformedDigest
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) < 16 {
		return p, nil, nil, errMalformedDigest
	}

	return p, salt, key, nil
}
