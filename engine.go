package authcore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tendera/authcore/password"
	"github.com/tendera/authcore/permission"
	"github.com/tendera/authcore/token"
)

// Engine is the authentication flow controller. It owns no state beyond
// its wiring: all durable state lives in the UserStore and every method
// is safe for concurrent use.
type Engine struct {
	config   Config
	store    UserStore
	notifier Notifier
	log      Logger
	hasher   *password.Hasher
	tokens   *token.Manager
	roles    *permission.RoleManager
	now      func() time.Time
}

// Roles exposes the role-to-permission mapping the engine derives from.
func (e *Engine) Roles() *permission.RoleManager {
	if e == nil {
		return nil
	}
	return e.roles
}

// Authenticate verifies a session token and resolves it to a live user.
// It rejects malformed, expired, and wrongly signed tokens with one
// opaque error, rejects tokens whose user has since been deleted, and
// rejects tokens issued before the user's last password change; that
// last check is what invalidates all prior sessions after a password
// update or reset without any server-side revocation list.
func (e *Engine) Authenticate(ctx context.Context, tokenStr string) (*User, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if tokenStr == "" {
		return nil, ErrAuthRequired
	}

	claims, err := e.tokens.Parse(tokenStr)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	user, err := e.store.GetByID(ctx, claims.UID)
	if err != nil {
		if Classify(err) == KindNotFound {
			return nil, ErrUserGone
		}
		return nil, e.storeErr("load user for token", err)
	}

	// iat has second precision; a change in the same second keeps the
	// token valid, which is why issuance happens after the save.
	if !user.PasswordChangedAt.IsZero() &&
		user.PasswordChangedAt.Unix() > claims.IssuedAt.Unix() {
		return nil, ErrPasswordChanged
	}

	return user, nil
}

// issueSession signs a token for the user and returns it with the
// secret-stripped record.
func (e *Engine) issueSession(user *User) (*Session, error) {
	tok, err := e.tokens.Issue(user.ID, e.now())
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &Session{Token: tok, User: user.StripSecrets()}, nil
}

// storeErr wraps a store failure so its native shape never leaks past
// the engine; Classify maps the result to a server error.
func (e *Engine) storeErr(op string, err error) error {
	e.log.Error("user store failure", "op", op, "err", err)
	return fmt.Errorf("user store: %s: %w", op, err)
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,19}$`)
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
