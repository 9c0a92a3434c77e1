package config

import (
	"errors"
	"reflect"
	"testing"
)

func TestMapStore_PutGet(t *testing.T) {
	s := NewMapStore()

	if err := s.Put("a", 1); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	v, ok := s.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v, want 1, true", v, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}

	// Put replaces
	_ = s.Put("a", 2)
	if v, _ := s.Get("a"); v != 2 {
		t.Errorf("Get(a) after replace = %v, want 2", v)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d after replace, want 1", s.Len())
	}
}

func TestMapStore_KeysInsertionOrder(t *testing.T) {
	s := NewMapStore()
	for _, k := range []string{"c", "a", "b"} {
		_ = s.Put(k, k)
	}

	want := []string{"c", "a", "b"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	// Replacing a value keeps its original position.
	_ = s.Put("c", "new")
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() after replace = %v, want %v", got, want)
	}
}

func TestMapStore_Remove(t *testing.T) {
	s := NewMapStore()
	_ = s.Put("a", 1)
	_ = s.Put("b", 2)

	if err := s.Remove("a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if s.Contains("a") {
		t.Error("Contains(a) = true after Remove")
	}
	if got := s.Keys(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Keys() = %v, want [b]", got)
	}

	// Removing an absent name is a no-op.
	if err := s.Remove("missing"); err != nil {
		t.Errorf("Remove(missing) error = %v", err)
	}
}

func TestMapStore_Clear(t *testing.T) {
	s := NewMapStore()
	_ = s.Put("a", 1)
	_ = s.Put("b", 2)

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", s.Len())
	}
	if len(s.Keys()) != 0 {
		t.Errorf("Keys() = %v after Clear, want empty", s.Keys())
	}
}

func TestReadOnlyStore(t *testing.T) {
	inner := NewMapStore()
	_ = inner.Put("a", 1)
	s := NewReadOnlyStore(inner)

	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v, want 1, true", v, ok)
	}
	if !s.Contains("a") || s.Len() != 1 {
		t.Error("read-through accessors disagree with inner store")
	}

	if err := s.Put("b", 2); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Put() error = %v, want %v", err, ErrReadOnly)
	}
	if err := s.Remove("a"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Remove() error = %v, want %v", err, ErrReadOnly)
	}
	if err := s.Clear(); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Clear() error = %v, want %v", err, ErrReadOnly)
	}

	// Failed mutations left the inner store untouched.
	if inner.Len() != 1 {
		t.Errorf("inner Len() = %d, want 1", inner.Len())
	}
}
