package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrPropertyNotFound indicates the property name doesn't exist.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidName indicates an empty or malformed property name.
	ErrInvalidName = errors.New("invalid property name")

	// ErrReadOnly indicates a mutation was attempted on a read-only store.
	ErrReadOnly = errors.New("store is read-only")

	// ErrNoPath indicates a file operation was attempted without a path.
	ErrNoPath = errors.New("no file path configured")

	// ErrUnknownFormat indicates the file extension maps to no known format.
	ErrUnknownFormat = errors.New("unknown configuration format")
)

// TypeError is returned when a typed getter finds a value of the wrong type.
type TypeError struct {
	// Name is the property name.
	Name string
	// Expected is the expected type name.
	Expected string
	// Actual is the actual type name.
	Actual string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("type error for %s: expected %s, got %s", e.Name, e.Expected, e.Actual)
}

// Is implements error matching for TypeError.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
