package permission

import (
	"errors"
	"sort"
	"sync"
)

// RoleManager maps role names to their permission sets. It is the single
// source of truth for permission derivation: user records store the
// derived set denormalized, and this manager recomputes it on role
// changes.
type RoleManager struct {
	registry *Registry

	mu     sync.RWMutex
	roles  map[string][]string
	frozen bool
}

// NewRoleManager returns a role manager backed by registry.
func NewRoleManager(registry *Registry) *RoleManager {
	return &RoleManager{
		registry: registry,
		roles:    make(map[string][]string),
	}
}

// RegisterRole assigns a permission set to a role. Every permission must
// already be registered. Must be called before Freeze.
func (rm *RoleManager) RegisterRole(role string, permissions []string) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.frozen {
		return errors.New("role manager frozen")
	}
	if role == "" {
		return errors.New("role name empty")
	}
	if _, exists := rm.roles[role]; exists {
		return errors.New("role already registered: " + role)
	}
	for _, p := range permissions {
		if !rm.registry.Known(p) {
			return errors.New("permission not registered: " + p)
		}
	}

	rm.roles[role] = append([]string(nil), permissions...)
	return nil
}

// Permissions returns a copy of the role's permission set, or false for
// an unknown role.
func (rm *RoleManager) Permissions(role string) ([]string, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	perms, ok := rm.roles[role]
	if !ok {
		return nil, false
	}
	return append([]string(nil), perms...), true
}

// Roles returns the sorted registered role names.
func (rm *RoleManager) Roles() []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	out := make([]string, 0, len(rm.roles))
	for r := range rm.roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Freeze prevents further role registrations.
func (rm *RoleManager) Freeze() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.frozen = true
}
