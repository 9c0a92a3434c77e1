package event

import "sync"

// Source generates configuration change events for a single store.
//
// A Source owns a Registry and the detail-events state of its store. Every
// public mutation fires an enclosing before/after pair through FireEvent;
// compound mutations wrap their internal sub-steps in a
// SetDetailEvents(false)/SetDetailEvents(true) bracket so that sub-step
// events are suppressed unless the store owner enabled detail events.
//
// The detail state is a nesting counter rather than a flag: FireEvent
// delivers while the counter is non-negative, SetDetailEvents(true)
// increments and SetDetailEvents(false) decrements. With the default
// counter of zero an operation's own events fire but the bracket pushes the
// counter to -1, hiding sub-steps. With detail events enabled the counter
// starts at one, the bracket only lowers it to zero, and sub-step events
// remain visible. Nested compound operations compose the same way.
type Source struct {
	registry *Registry

	mu     sync.Mutex
	detail int
}

// NewSource creates a Source with an empty listener registry.
// Detail events are disabled by default.
func NewSource() *Source {
	return &Source{registry: NewRegistry()}
}

// AddListener registers a listener for events matching filter.
func (s *Source) AddListener(filter Type, l Listener) *Registration {
	return s.registry.AddListener(filter, l)
}

// RemoveListener unregisters a prior (filter, listener) registration.
// Removing a registration that does not exist is a no-op.
func (s *Source) RemoveListener(filter Type, l Listener) bool {
	return s.registry.RemoveListener(filter, l)
}

// Registry exposes the listener registry, mainly for inspection in tests
// and tooling.
func (s *Source) Registry() *Registry {
	return s.registry
}

// SetDetailEvents adjusts the detail-events nesting counter. Passing true
// increments it, false decrements it. Calls with true and false must be
// balanced; mutation façades hold a false/true bracket around internal
// sub-steps while store owners call SetDetailEvents(true) once to observe
// those sub-steps.
func (s *Source) SetDetailEvents(enable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enable {
		s.detail++
	} else {
		s.detail--
	}
}

// IsDetailEvents reports whether detail events are currently enabled.
func (s *Source) IsDetailEvents() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail > 0
}

// FireEvent constructs an Event and delivers it to matching listeners,
// unless event generation is currently suppressed by a detail bracket.
// The first listener error aborts delivery and is returned; a suppressed
// fire returns nil.
func (s *Source) FireEvent(t Type, name string, value any, before bool) error {
	s.mu.Lock()
	deliver := s.detail >= 0
	s.mu.Unlock()

	if !deliver {
		return nil
	}

	return s.registry.Fire(Event{
		Type:         t,
		Name:         name,
		Value:        value,
		BeforeUpdate: before,
	})
}
