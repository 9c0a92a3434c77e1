package event

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// registration is one (filter, listener) pair held by a Registry.
type registration struct {
	id       string
	filter   Type
	listener Listener
}

// Registration is a handle for a single listener registration.
// It allows removal of listeners that are not comparable values,
// such as ListenerFunc registrations.
type Registration struct {
	id       string
	registry *Registry
}

// ID returns the unique registration identifier.
func (r *Registration) ID() string {
	return r.id
}

// Remove unregisters the listener. Removing an already-removed
// registration is a no-op and returns false.
func (r *Registration) Remove() bool {
	if r.registry == nil {
		return false
	}
	return r.registry.removeByID(r.id)
}

// Registry holds listener registrations for a configuration store.
//
// Listeners are invoked synchronously in registration order. The same
// listener may be registered multiple times, under the same or different
// filters; each registration yields its own notification per matching
// event. The zero value is not usable; create registries with NewRegistry.
type Registry struct {
	mu   sync.RWMutex
	regs []registration
}

// NewRegistry creates an empty listener registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddListener registers a listener for events matching filter.
// There is no de-duplication: registering the same listener twice under
// the same filter yields two notifications per matching event.
func (r *Registry) AddListener(filter Type, l Listener) *Registration {
	if l == nil {
		return &Registration{}
	}

	reg := registration{
		id:       uuid.NewString(),
		filter:   filter,
		listener: l,
	}

	r.mu.Lock()
	r.regs = append(r.regs, reg)
	r.mu.Unlock()

	return &Registration{id: reg.id, registry: r}
}

// RemoveListener unregisters the first registration that matches the
// (filter, listener) pair exactly. Removing a registration that does not
// exist is a no-op and returns false. Only listeners registered as
// comparable values (typically pointers) can be removed this way; use the
// Registration handle otherwise.
func (r *Registry) RemoveListener(filter Type, l Listener) bool {
	if l == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.regs {
		if reg.filter == filter && sameListener(reg.listener, l) {
			r.regs = append(r.regs[:i:i], r.regs[i+1:]...)
			return true
		}
	}
	return false
}

// Fire synchronously delivers e to every registered listener whose filter
// matches e.Type, in registration order. The first listener error stops
// delivery to the remaining listeners and is returned.
//
// Fire is re-entrant: a listener may trigger further mutations (and thus
// nested Fire calls) without corrupting the outer iteration. Registrations
// added or removed during delivery take effect for subsequent events, not
// for the event currently being delivered.
func (r *Registry) Fire(e Event) error {
	r.mu.RLock()
	regs := make([]registration, len(r.regs))
	copy(regs, r.regs)
	r.mu.RUnlock()

	for _, reg := range regs {
		if !reg.filter.Matches(e.Type) {
			continue
		}
		if err := reg.listener.ConfigurationChanged(e); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of registrations whose filter matches t.
// Count(TypeAny) returns the total number of registrations.
func (r *Registry) Count(t Type) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t == TypeAny {
		return len(r.regs)
	}
	n := 0
	for _, reg := range r.regs {
		if reg.filter.Matches(t) {
			n++
		}
	}
	return n
}

// removeByID removes the registration with the given ID.
func (r *Registry) removeByID(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.regs {
		if reg.id == id {
			r.regs = append(r.regs[:i:i], r.regs[i+1:]...)
			return true
		}
	}
	return false
}

// sameListener reports whether two listener values are the same
// registration target. Uncomparable listener types (such as ListenerFunc)
// never match; those registrations are removed via their handle.
func sameListener(a, b Listener) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}
