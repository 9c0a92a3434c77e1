package event

import (
	"errors"
	"testing"
)

// recorder is a comparable test listener that collects every event it sees.
type recorder struct {
	events []Event
	err    error
}

func (r *recorder) ConfigurationChanged(e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestRegistry_AddListener(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}

	reg := r.AddListener(TypeAddProperty, rec)
	if reg == nil {
		t.Fatal("AddListener() returned nil registration")
	}
	if reg.ID() == "" {
		t.Error("registration has empty ID")
	}
	if r.Count(TypeAddProperty) != 1 {
		t.Errorf("Count(TypeAddProperty) = %d, want 1", r.Count(TypeAddProperty))
	}
}

func TestRegistry_Fire_ExactMatch(t *testing.T) {
	r := NewRegistry()
	add := &recorder{}
	clr := &recorder{}
	r.AddListener(TypeAddProperty, add)
	r.AddListener(TypeClear, clr)

	e := Event{Type: TypeAddProperty, Name: "a", Value: "v", BeforeUpdate: true}
	if err := r.Fire(e); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}

	if len(add.events) != 1 || add.events[0] != e {
		t.Errorf("add listener events = %+v, want [%+v]", add.events, e)
	}
	if len(clr.events) != 0 {
		t.Errorf("clear listener received %d events, want 0", len(clr.events))
	}
}

func TestRegistry_Fire_Wildcard(t *testing.T) {
	r := NewRegistry()
	all := &recorder{}
	r.AddListener(TypeAny, all)

	types := []Type{TypeAddProperty, TypeSetProperty, TypeClearProperty, TypeClear, Type("custom")}
	for _, typ := range types {
		if err := r.Fire(Event{Type: typ}); err != nil {
			t.Fatalf("Fire(%q) error = %v", typ, err)
		}
	}

	if len(all.events) != len(types) {
		t.Fatalf("wildcard listener received %d events, want %d", len(all.events), len(types))
	}
	for i, typ := range types {
		if all.events[i].Type != typ {
			t.Errorf("event %d type = %q, want %q", i, all.events[i].Type, typ)
		}
	}
}

func TestRegistry_Fire_RegistrationOrder(t *testing.T) {
	r := NewRegistry()

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		r.AddListener(TypeAny, ListenerFunc(func(Event) error {
			order = append(order, name)
			return nil
		}))
	}

	if err := r.Fire(Event{Type: TypeClear}); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("delivered to %d listeners, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("delivery order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRegistry_NoDeduplication(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}

	r.AddListener(TypeAddProperty, rec)
	r.AddListener(TypeAddProperty, rec)

	if err := r.Fire(Event{Type: TypeAddProperty}); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}

	if len(rec.events) != 2 {
		t.Errorf("double-registered listener received %d events, want 2", len(rec.events))
	}
}

func TestRegistry_RemoveListener(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}

	r.AddListener(TypeAddProperty, rec)

	if !r.RemoveListener(TypeAddProperty, rec) {
		t.Error("RemoveListener() = false for existing registration")
	}
	if err := r.Fire(Event{Type: TypeAddProperty}); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if len(rec.events) != 0 {
		t.Errorf("removed listener received %d events, want 0", len(rec.events))
	}
}

func TestRegistry_RemoveListener_NoOp(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}

	// Never registered
	if r.RemoveListener(TypeAddProperty, rec) {
		t.Error("RemoveListener() = true for unregistered listener")
	}

	// Registered under a different filter
	r.AddListener(TypeClear, rec)
	if r.RemoveListener(TypeAddProperty, rec) {
		t.Error("RemoveListener() = true for mismatched filter")
	}
	if r.Count(TypeClear) != 1 {
		t.Error("mismatched removal deleted the registration")
	}
}

func TestRegistry_RemoveListener_FirstMatchOnly(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}

	r.AddListener(TypeAddProperty, rec)
	r.AddListener(TypeAddProperty, rec)

	r.RemoveListener(TypeAddProperty, rec)

	if err := r.Fire(Event{Type: TypeAddProperty}); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if len(rec.events) != 1 {
		t.Errorf("listener received %d events after single removal, want 1", len(rec.events))
	}
}

func TestRegistration_Remove(t *testing.T) {
	r := NewRegistry()

	calls := 0
	reg := r.AddListener(TypeAny, ListenerFunc(func(Event) error {
		calls++
		return nil
	}))

	if !reg.Remove() {
		t.Error("Remove() = false for active registration")
	}
	if reg.Remove() {
		t.Error("Remove() = true for already-removed registration")
	}

	if err := r.Fire(Event{Type: TypeClear}); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("removed func listener called %d times, want 0", calls)
	}
}

func TestRegistry_Fire_ListenerErrorAbortsDelivery(t *testing.T) {
	r := NewRegistry()

	failure := errors.New("listener failed")
	first := &recorder{}
	second := &recorder{err: failure}
	third := &recorder{}

	r.AddListener(TypeAny, first)
	r.AddListener(TypeAny, second)
	r.AddListener(TypeAny, third)

	err := r.Fire(Event{Type: TypeClear})
	if !errors.Is(err, failure) {
		t.Fatalf("Fire() error = %v, want %v", err, failure)
	}

	if len(first.events) != 1 {
		t.Errorf("first listener received %d events, want 1", len(first.events))
	}
	if len(third.events) != 0 {
		t.Errorf("listener after the failing one received %d events, want 0", len(third.events))
	}
}

func TestRegistry_Fire_ReentrantRegistration(t *testing.T) {
	r := NewRegistry()

	late := &recorder{}
	r.AddListener(TypeAny, ListenerFunc(func(Event) error {
		// Registrations during delivery apply to subsequent events only.
		r.AddListener(TypeAny, late)
		return nil
	}))

	if err := r.Fire(Event{Type: TypeClear}); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if len(late.events) != 0 {
		t.Errorf("listener added during delivery received %d events for the current event, want 0", len(late.events))
	}

	if err := r.Fire(Event{Type: TypeClear}); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if len(late.events) != 1 {
		t.Errorf("listener added during delivery received %d events for the next event, want 1", len(late.events))
	}
}

func TestRegistry_Fire_ReentrantFire(t *testing.T) {
	r := NewRegistry()

	all := &recorder{}
	r.AddListener(TypeAny, ListenerFunc(func(e Event) error {
		// A nested fire runs to completion before the outer one resumes.
		if e.Type == TypeSetProperty {
			return r.Fire(Event{Type: TypeAddProperty, Name: "nested"})
		}
		return nil
	}))
	r.AddListener(TypeAny, all)

	if err := r.Fire(Event{Type: TypeSetProperty, Name: "outer"}); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}

	// The nested event is fully delivered before the outer event reaches
	// the second listener.
	if len(all.events) != 2 {
		t.Fatalf("received %d events, want 2", len(all.events))
	}
	if all.events[0].Name != "nested" || all.events[1].Name != "outer" {
		t.Errorf("delivery order = [%s, %s], want [nested, outer]",
			all.events[0].Name, all.events[1].Name)
	}
}

func TestRegistry_Count(t *testing.T) {
	r := NewRegistry()
	r.AddListener(TypeAddProperty, &recorder{})
	r.AddListener(TypeAddProperty, &recorder{})
	r.AddListener(TypeAny, &recorder{})

	if got := r.Count(TypeAddProperty); got != 3 {
		t.Errorf("Count(TypeAddProperty) = %d, want 3 (two exact plus wildcard)", got)
	}
	if got := r.Count(TypeClear); got != 1 {
		t.Errorf("Count(TypeClear) = %d, want 1 (wildcard only)", got)
	}
	if got := r.Count(TypeAny); got != 3 {
		t.Errorf("Count(TypeAny) = %d, want 3", got)
	}
}

func TestRegistry_AddListener_Nil(t *testing.T) {
	r := NewRegistry()
	reg := r.AddListener(TypeAny, nil)

	if reg.Remove() {
		t.Error("Remove() = true for nil-listener registration")
	}
	if r.Count(TypeAny) != 0 {
		t.Error("nil listener was registered")
	}
}
