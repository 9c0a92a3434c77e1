package config

// Store is the key/value collaborator a configuration mutates.
//
// The event core only needs to know that a mutation occurred, never how
// the store represents values internally. Implementations are not required
// to be safe for concurrent mutation; configurations assume a single
// writer at a time, matching typical in-process configuration use.
type Store interface {
	// Get returns the value for name and whether it exists.
	Get(name string) (any, bool)

	// Put stores value under name, replacing any existing value.
	Put(name string, value any) error

	// Remove deletes name. Removing an absent name is a no-op.
	Remove(name string) error

	// Clear deletes every value.
	Clear() error

	// Contains reports whether name exists.
	Contains(name string) bool

	// Keys returns all names in insertion order.
	Keys() []string

	// Len returns the number of stored values.
	Len() int
}

// MapStore is the default in-memory Store. It preserves the insertion
// order of keys so that iteration (and therefore detail-event order during
// a whole-store clear) is deterministic.
type MapStore struct {
	values map[string]any
	order  []string
}

// NewMapStore creates an empty MapStore.
func NewMapStore() *MapStore {
	return &MapStore{values: make(map[string]any)}
}

// Get returns the value for name and whether it exists.
func (s *MapStore) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Put stores value under name.
func (s *MapStore) Put(name string, value any) error {
	if _, exists := s.values[name]; !exists {
		s.order = append(s.order, name)
	}
	s.values[name] = value
	return nil
}

// Remove deletes name.
func (s *MapStore) Remove(name string) error {
	if _, exists := s.values[name]; !exists {
		return nil
	}
	delete(s.values, name)
	for i, k := range s.order {
		if k == name {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear deletes every value.
func (s *MapStore) Clear() error {
	s.values = make(map[string]any)
	s.order = nil
	return nil
}

// Contains reports whether name exists.
func (s *MapStore) Contains(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Keys returns all names in insertion order.
func (s *MapStore) Keys() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Len returns the number of stored values.
func (s *MapStore) Len() int {
	return len(s.values)
}

// ReadOnlyStore wraps a Store and rejects every mutation with ErrReadOnly.
// Reads pass through unchanged.
type ReadOnlyStore struct {
	inner Store
}

// NewReadOnlyStore wraps inner in a read-only view.
func NewReadOnlyStore(inner Store) *ReadOnlyStore {
	return &ReadOnlyStore{inner: inner}
}

// Get returns the value for name and whether it exists.
func (s *ReadOnlyStore) Get(name string) (any, bool) { return s.inner.Get(name) }

// Put always fails with ErrReadOnly.
func (s *ReadOnlyStore) Put(string, any) error { return ErrReadOnly }

// Remove always fails with ErrReadOnly.
func (s *ReadOnlyStore) Remove(string) error { return ErrReadOnly }

// Clear always fails with ErrReadOnly.
func (s *ReadOnlyStore) Clear() error { return ErrReadOnly }

// Contains reports whether name exists.
func (s *ReadOnlyStore) Contains(name string) bool { return s.inner.Contains(name) }

// Keys returns all names in insertion order.
func (s *ReadOnlyStore) Keys() []string { return s.inner.Keys() }

// Len returns the number of stored values.
func (s *ReadOnlyStore) Len() int { return s.inner.Len() }
