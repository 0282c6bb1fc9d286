// Package redis implements authcore.UserStore over Redis. User records
// are stored as JSON with secondary index keys for the email, employee
// ID and reset-token lookups.
package redis

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	authcore "github.com/tendera/authcore"
)

// Store is a Redis-backed user store.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

// New returns a Store using the given client. An empty prefix defaults
// to "ua".
func New(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "ua"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) userKey(id string) string { return s.prefix + ":user:" + id }
func (s *Store) emailKey(e string) string { return s.prefix + ":email:" + strings.ToLower(e) }
func (s *Store) empKey(emp string) string { return s.prefix + ":emp:" + emp }
func (s *Store) resetKey(h []byte) string { return s.prefix + ":reset:" + hex.EncodeToString(h) }
func (s *Store) userPattern() string      { return s.prefix + ":user:*" }

func (s *Store) Create(ctx context.Context, u *authcore.User) error {
	ok, err := s.rdb.SetNX(ctx, s.emailKey(u.Email), u.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx email: %w", err)
	}
	if !ok {
		return authcore.ErrEmailTaken
	}

	ok, err = s.rdb.SetNX(ctx, s.empKey(u.EmployeeID), u.ID, 0).Result()
	if err != nil || !ok {
		s.rdb.Del(ctx, s.emailKey(u.Email))
		if err != nil {
			return fmt.Errorf("redis setnx employee id: %w", err)
		}
		return authcore.ErrEmployeeIDTaken
	}

	if err := s.writeUser(ctx, u); err != nil {
		s.rdb.Del(ctx, s.emailKey(u.Email), s.empKey(u.EmployeeID))
		return err
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*authcore.User, error) {
	u, err := s.GetByIDWithSecrets(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.StripSecrets(), nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*authcore.User, error) {
	u, err := s.GetByEmailWithSecrets(ctx, email)
	if err != nil {
		return nil, err
	}
	return u.StripSecrets(), nil
}

func (s *Store) GetByEmployeeID(ctx context.Context, employeeID string) (*authcore.User, error) {
	id, err := s.rdb.Get(ctx, s.empKey(employeeID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get employee index: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *Store) GetByIDWithSecrets(ctx context.Context, id string) (*authcore.User, error) {
	raw, err := s.rdb.Get(ctx, s.userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get user: %w", err)
	}
	var u authcore.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}
	return &u, nil
}

func (s *Store) GetByEmailWithSecrets(ctx context.Context, email string) (*authcore.User, error) {
	id, err := s.rdb.Get(ctx, s.emailKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get email index: %w", err)
	}
	return s.GetByIDWithSecrets(ctx, id)
}

func (s *Store) GetByResetTokenHash(ctx context.Context, hash []byte, now time.Time) (*authcore.User, error) {
	if len(hash) == 0 {
		return nil, authcore.ErrUserNotFound
	}
	id, err := s.rdb.Get(ctx, s.resetKey(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, authcore.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get reset index: %w", err)
	}

	u, err := s.GetByIDWithSecrets(ctx, id)
	if err != nil {
		return nil, err
	}
	// The index key can outlive a record rewrite; the record itself is
	// authoritative for both the hash and the deadline.
	if !bytes.Equal(u.PasswordResetHash, hash) || !u.PasswordResetExpires.After(now) {
		return nil, authcore.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) Save(ctx context.Context, u *authcore.User) error {
	prev, err := s.GetByIDWithSecrets(ctx, u.ID)
	if err != nil {
		return err
	}

	if !strings.EqualFold(prev.Email, u.Email) {
		ok, err := s.rdb.SetNX(ctx, s.emailKey(u.Email), u.ID, 0).Result()
		if err != nil {
			return fmt.Errorf("redis setnx email: %w", err)
		}
		if !ok {
			return authcore.ErrEmailTaken
		}
		s.rdb.Del(ctx, s.emailKey(prev.Email))
	}

	if err := s.writeUser(ctx, u); err != nil {
		return err
	}
	return s.syncResetIndex(ctx, prev, u)
}

// syncResetIndex keeps the reset-token index aligned with the record:
// drops the key for a retired hash, creates one for a fresh hash with
// a TTL matching the reset deadline.
func (s *Store) syncResetIndex(ctx context.Context, prev, cur *authcore.User) error {
	if len(prev.PasswordResetHash) > 0 && !bytes.Equal(prev.PasswordResetHash, cur.PasswordResetHash) {
		s.rdb.Del(ctx, s.resetKey(prev.PasswordResetHash))
	}
	if len(cur.PasswordResetHash) > 0 {
		ttl := time.Until(cur.PasswordResetExpires)
		if ttl <= 0 {
			return nil
		}
		if err := s.rdb.Set(ctx, s.resetKey(cur.PasswordResetHash), cur.ID, ttl).Err(); err != nil {
			return fmt.Errorf("redis set reset index: %w", err)
		}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	u, err := s.GetByIDWithSecrets(ctx, id)
	if err != nil {
		return err
	}
	keys := []string{s.userKey(id), s.emailKey(u.Email), s.empKey(u.EmployeeID)}
	if len(u.PasswordResetHash) > 0 {
		keys = append(keys, s.resetKey(u.PasswordResetHash))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del user: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*authcore.User, error) {
	var out []*authcore.User
	iter := s.rdb.Scan(ctx, 0, s.userPattern(), 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get user: %w", err)
		}
		var u authcore.User
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, fmt.Errorf("decode user record: %w", err)
		}
		out = append(out, &u)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan users: %w", err)
	}
	return out, nil
}

func (s *Store) writeUser(ctx context.Context, u *authcore.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	if err := s.rdb.Set(ctx, s.userKey(u.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set user: %w", err)
	}
	return nil
}

var _ authcore.UserStore = (*Store)(nil)
