// Package memory implements authcore.UserStore over in-process maps.
// It is intended for tests and single-node development setups.
package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	authcore "github.com/tendera/authcore"
)

// Store keeps users in maps guarded by a single mutex. Secondary
// indexes on email and employee ID back the uniqueness checks.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*authcore.User
	byEmail map[string]string
	byEmpID map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]*authcore.User),
		byEmail: make(map[string]string),
		byEmpID: make(map[string]string),
	}
}

func (s *Store) Create(ctx context.Context, u *authcore.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, ok := s.byEmail[email]; ok {
		return authcore.ErrEmailTaken
	}
	if _, ok := s.byEmpID[u.EmployeeID]; ok {
		return authcore.ErrEmployeeIDTaken
	}

	s.users[u.ID] = u.Clone()
	s.byEmail[email] = u.ID
	s.byEmpID[u.EmployeeID] = u.ID
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
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmpID[employeeID]
	if !ok {
		return nil, authcore.ErrUserNotFound
	}
	return s.users[id].StripSecrets(), nil
}

func (s *Store) GetByIDWithSecrets(ctx context.Context, id string) (*authcore.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, authcore.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (s *Store) GetByEmailWithSecrets(ctx context.Context, email string) (*authcore.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, authcore.ErrUserNotFound
	}
	return s.users[id].Clone(), nil
}

func (s *Store) GetByResetTokenHash(ctx context.Context, hash []byte, now time.Time) (*authcore.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(hash) == 0 {
		return nil, authcore.ErrUserNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if bytes.Equal(u.PasswordResetHash, hash) && u.PasswordResetExpires.After(now) {
			return u.Clone(), nil
		}
	}
	return nil, authcore.ErrUserNotFound
}

func (s *Store) Save(ctx context.Context, u *authcore.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.users[u.ID]
	if !ok {
		return authcore.ErrUserNotFound
	}

	email := strings.ToLower(u.Email)
	prevEmail := strings.ToLower(prev.Email)
	if email != prevEmail {
		if _, taken := s.byEmail[email]; taken {
			return authcore.ErrEmailTaken
		}
		delete(s.byEmail, prevEmail)
		s.byEmail[email] = u.ID
	}

	s.users[u.ID] = u.Clone()
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return authcore.ErrUserNotFound
	}
	delete(s.byEmail, strings.ToLower(u.Email))
	delete(s.byEmpID, u.EmployeeID)
	delete(s.users, id)
	return nil
}

func (s *Store) List(ctx context.Context) ([]*authcore.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*authcore.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ authcore.UserStore = (*Store)(nil)
