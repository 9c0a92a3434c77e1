package config

import (
	"github.com/dshills/confkit/internal/config/event"
)

// Configuration is the read/write surface of a configuration store.
//
// Every mutating operation fires a before event, applies the storage
// mutation, then fires the matching after event. When the storage mutation
// or a listener observing the before event fails, the after event is
// suppressed and the error propagates to the caller; the before event is
// never retracted.
type Configuration interface {
	// Get returns the raw value for name and whether it exists.
	Get(name string) (any, bool)

	// ContainsKey reports whether name exists.
	ContainsKey(name string) bool

	// Keys returns all property names in insertion order.
	Keys() []string

	// AddProperty adds value to name. Adding to an existing property
	// turns the value into a list and appends.
	AddProperty(name string, value any) error

	// SetProperty replaces the value of name.
	SetProperty(name string, value any) error

	// ClearProperty removes name. The event pair fires whether or not
	// the property existed.
	ClearProperty(name string) error

	// Clear removes every property. The event pair fires even on an
	// empty store.
	Clear() error
}

// BaseConfiguration is the standard Configuration backed by a Store.
//
// It embeds an event.Source, so listener registration
// (AddListener/RemoveListener) and the detail-events switch
// (SetDetailEvents/IsDetailEvents) are part of its public surface.
type BaseConfiguration struct {
	*event.Source
	store Store
}

// Option configures a BaseConfiguration.
type Option func(*BaseConfiguration)

// WithStore sets the backing store. The default is a fresh MapStore.
func WithStore(s Store) Option {
	return func(c *BaseConfiguration) {
		if s != nil {
			c.store = s
		}
	}
}

// New creates a BaseConfiguration with the given options.
func New(opts ...Option) *BaseConfiguration {
	c := &BaseConfiguration{
		Source: event.NewSource(),
		store:  NewMapStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the raw value for name and whether it exists.
func (c *BaseConfiguration) Get(name string) (any, bool) {
	return c.store.Get(name)
}

// ContainsKey reports whether name exists.
func (c *BaseConfiguration) ContainsKey(name string) bool {
	return c.store.Contains(name)
}

// Keys returns all property names in insertion order.
func (c *BaseConfiguration) Keys() []string {
	return c.store.Keys()
}

// Len returns the number of properties.
func (c *BaseConfiguration) Len() int {
	return c.store.Len()
}

// Store returns the backing store.
func (c *BaseConfiguration) Store() Store {
	return c.store
}

// AddProperty adds value to name, firing an add-property event pair.
func (c *BaseConfiguration) AddProperty(name string, value any) error {
	if name == "" {
		return ErrInvalidName
	}
	if err := c.FireEvent(event.TypeAddProperty, name, value, true); err != nil {
		return err
	}
	if err := c.addPropertyDirect(name, value); err != nil {
		return err
	}
	return c.FireEvent(event.TypeAddProperty, name, value, false)
}

// SetProperty replaces the value of name, firing a set-property event
// pair. The replacement is implemented as a clear followed by an add;
// those sub-steps surface as detail events when detail events are enabled.
func (c *BaseConfiguration) SetProperty(name string, value any) error {
	if name == "" {
		return ErrInvalidName
	}
	if err := c.FireEvent(event.TypeSetProperty, name, value, true); err != nil {
		return err
	}

	c.SetDetailEvents(false)
	err := c.replaceProperty(name, value)
	c.SetDetailEvents(true)
	if err != nil {
		return err
	}

	return c.FireEvent(event.TypeSetProperty, name, value, false)
}

// ClearProperty removes name, firing a clear-property event pair. The
// pair fires whether or not the property existed; the event reflects the
// operation, not whether state actually changed.
func (c *BaseConfiguration) ClearProperty(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	if err := c.FireEvent(event.TypeClearProperty, name, nil, true); err != nil {
		return err
	}
	if err := c.store.Remove(name); err != nil {
		return err
	}
	return c.FireEvent(event.TypeClearProperty, name, nil, false)
}

// Clear removes every property, firing a clear event pair. The store is
// emptied key by key; the per-key removals surface as clear-property
// detail events when detail events are enabled.
func (c *BaseConfiguration) Clear() error {
	if err := c.FireEvent(event.TypeClear, "", nil, true); err != nil {
		return err
	}

	c.SetDetailEvents(false)
	err := c.clearDirect()
	c.SetDetailEvents(true)
	if err != nil {
		return err
	}

	return c.FireEvent(event.TypeClear, "", nil, false)
}

// addPropertyDirect writes to the store without firing events.
func (c *BaseConfiguration) addPropertyDirect(name string, value any) error {
	existing, ok := c.store.Get(name)
	if !ok {
		return c.store.Put(name, value)
	}
	if list, isList := existing.([]any); isList {
		return c.store.Put(name, append(list, value))
	}
	return c.store.Put(name, []any{existing, value})
}

// replaceProperty is the internal decomposition of SetProperty.
func (c *BaseConfiguration) replaceProperty(name string, value any) error {
	if err := c.ClearProperty(name); err != nil {
		return err
	}
	return c.AddProperty(name, value)
}

// clearDirect empties the store key by key.
func (c *BaseConfiguration) clearDirect() error {
	for _, key := range c.store.Keys() {
		if err := c.ClearProperty(key); err != nil {
			return err
		}
	}
	return c.store.Clear()
}

// GetString returns a string value for name.
func (c *BaseConfiguration) GetString(name string) (string, error) {
	v, ok := c.Get(name)
	if !ok {
		return "", ErrPropertyNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Name: name, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value for name.
func (c *BaseConfiguration) GetInt(name string) (int, error) {
	v, ok := c.Get(name)
	if !ok {
		return 0, ErrPropertyNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Name: name, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value for name.
func (c *BaseConfiguration) GetBool(name string) (bool, error) {
	v, ok := c.Get(name)
	if !ok {
		return false, ErrPropertyNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Name: name, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetFloat returns a float64 value for name.
func (c *BaseConfiguration) GetFloat(name string) (float64, error) {
	v, ok := c.Get(name)
	if !ok {
		return 0, ErrPropertyNotFound
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Name: name, Expected: "float64", Actual: typeName(v)}
	}
}

// GetStringSlice returns a string slice for name. A scalar string value is
// returned as a one-element slice, matching list-append semantics of
// AddProperty.
func (c *BaseConfiguration) GetStringSlice(name string) ([]string, error) {
	v, ok := c.Get(name)
	if !ok {
		return nil, ErrPropertyNotFound
	}
	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []string:
		return val, nil
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Name: name, Expected: "[]string", Actual: typeName(v)}
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, &TypeError{Name: name, Expected: "[]string", Actual: typeName(v)}
	}
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float32, float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
