package event

// Type identifies the kind of mutation an Event describes.
//
// The set of types is open: the core defines the four store mutations plus
// the TypeAny wildcard, and concrete configuration implementations may
// declare additional types (a file-backed store declares a reload type, for
// example) without any change to the Registry or Source. Listeners that
// inspect only enclosing events should ignore types they do not recognize.
type Type string

const (
	// TypeAddProperty fires around adding a value to a property.
	TypeAddProperty Type = "add-property"

	// TypeSetProperty fires around replacing a property value.
	TypeSetProperty Type = "set-property"

	// TypeClearProperty fires around removing a single property.
	TypeClearProperty Type = "clear-property"

	// TypeClear fires around clearing the whole store.
	TypeClear Type = "clear"

	// TypeAny is the wildcard filter matching every event type.
	// It is valid only as a subscription filter, never as an event type.
	TypeAny Type = "*"
)

// Matches reports whether the filter accepts events of type t.
// TypeAny matches everything; any other filter matches exactly itself.
func (filter Type) Matches(t Type) bool {
	return filter == TypeAny || filter == t
}

// Event describes one occurrence of a configuration mutation.
//
// Events are constructed by the Source at the moment of firing and are
// never retained by the core after listener invocation.
type Event struct {
	// Type is the kind of mutation.
	Type Type

	// Name is the affected property name.
	// Empty for whole-store operations such as clear.
	Name string

	// Value is the value being added or set.
	// Nil for clear operations.
	Value any

	// BeforeUpdate is true when the event fires before the underlying
	// storage mutation is applied and false when it fires afterwards.
	BeforeUpdate bool
}

// Listener receives configuration change events.
//
// A non-nil error aborts delivery of the current event to any remaining
// listeners and propagates out of the mutation call that triggered it.
type Listener interface {
	ConfigurationChanged(e Event) error
}

// ListenerFunc adapts a plain function to the Listener interface.
//
// Function values are not comparable, so a ListenerFunc registration can
// only be removed through the Registration handle returned by AddListener.
type ListenerFunc func(e Event) error

// ConfigurationChanged implements Listener.
func (f ListenerFunc) ConfigurationChanged(e Event) error {
	return f(e)
}
