package schema

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry maps type witnesses to descriptors. It is an ordinary value
// passed to whoever needs it; there is no process-wide registry.
type Registry struct {
	mu    sync.RWMutex
	types map[TypeID]Type
}

// NewRegistry returns a registry pre-populated with types.
func NewRegistry(types ...Type) *Registry {
	r := &Registry{types: make(map[TypeID]Type, len(types))}
	for _, t := range types {
		r.types[t.ID()] = t
	}
	return r
}

// Register adds t. Registering the same descriptor twice is a no-op;
// registering a different descriptor under an existing ID fails with
// ErrTypeConflict.
func (r *Registry) Register(t Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[t.ID()]; ok {
		if existing == t {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrTypeConflict, t.ID())
	}
	r.types[t.ID()] = t
	return nil
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id TypeID) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	return t, ok
}

// MustLookup is Lookup for types the caller knows are registered. It panics
// with an error wrapping ErrUnknownType otherwise.
func (r *Registry) MustLookup(id TypeID) Type {
	t, ok := r.Lookup(id)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnknownType, id))
	}
	return t
}

// IDs lists the registered type witnesses in sorted order.
func (r *Registry) IDs() []TypeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.types))
}
