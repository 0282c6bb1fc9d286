package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config configures a Manager.
type Config struct {
	// Secret is the HS256 signing key. Required, >= 32 bytes.
	Secret []byte
	// TTL is the token lifetime.
	TTL time.Duration
	// Issuer is embedded and enforced when non-empty.
	Issuer string
	// Leeway tolerates clock skew during verification. At most 2 minutes.
	Leeway time.Duration
	// TimeFunc is the time source used for expiry verification. Defaults
	// to time.Now.
	TimeFunc func() time.Time
}

// Claims are the session token claims. UID is the user identifier; the
// registered issued-at and expiry carry the time bounds.
type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// Manager signs and parses session tokens. Safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token TTL must be positive")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("token leeway out of range")
	}
	return &Manager{config: cfg}, nil
}

// Issue signs a token for userID. now becomes the iat claim; expiry is
// now plus the configured TTL.
func (m *Manager) Issue(userID string, now time.Time) (string, error) {
	if userID == "" {
		return "", errors.New("token user id empty")
	}

	claims := Claims{
		UID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}
	if m.config.Issuer != "" {
		claims.Issuer = m.config.Issuer
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.config.Secret)
}

// Parse verifies signature, expiry, issued-at presence, and issuer, and
// returns the claims. Any failure is opaque to the caller: malformed,
// expired, and wrongly signed tokens are not distinguished here.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if m.config.TimeFunc != nil {
		options = append(options, jwt.WithTimeFunc(m.config.TimeFunc))
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.UID == "" {
		return nil, errors.New("token missing uid claim")
	}
	if claims.IssuedAt == nil {
		return nil, errors.New("token missing iat claim")
	}

	return claims, nil
}
