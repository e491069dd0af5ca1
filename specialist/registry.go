package specialist

import (
	"fmt"
	"sync"
)

// Registry holds the set of specialists available to a supervisor. It
// preserves registration order, which is the order specialists appear in the
// routing roster.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Specialist
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Specialist),
	}
}

// Register adds specialists to the registry. Registering an empty or
// duplicate ID is an error.
func (r *Registry) Register(specialists ...Specialist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sp := range specialists {
		id := sp.ID()
		if id == "" {
			return fmt.Errorf("specialist has empty ID")
		}
		if _, exists := r.byID[id]; exists {
			return fmt.Errorf("specialist %q already registered", id)
		}
		r.byID[id] = sp
		r.order = append(r.order, id)
	}

	return nil
}

// Get returns the specialist registered under id.
func (r *Registry) Get(id string) (Specialist, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sp, ok := r.byID[id]
	return sp, ok
}

// IDs returns registered IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// All returns registered specialists in registration order.
func (r *Registry) All() []Specialist {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Specialist, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.byID[id])
	}
	return all
}

// Len returns the number of registered specialists.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
