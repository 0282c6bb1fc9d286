package permission

import (
	"errors"
	"sync"
)

// Registry is the set of known permission names. Names are registered
// during initialization; Freeze prevents later mutation.
type Registry struct {
	mu     sync.RWMutex
	names  map[string]struct{}
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds a permission name. Must be called before Freeze.
func (r *Registry) Register(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.New("registry frozen")
	}
	if name == "" {
		return errors.New("permission name cannot be empty")
	}
	if _, exists := r.names[name]; exists {
		return errors.New("permission already registered: " + name)
	}

	r.names[name] = struct{}{}
	return nil
}

// Known reports whether name has been registered.
func (r *Registry) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.names[name]
	return ok
}

// Count returns the number of registered permissions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Freeze prevents further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}
