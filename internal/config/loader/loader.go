// Package loader parses configuration documents into property maps.
//
// Loaders exist for TOML, YAML and JSON files plus environment variables.
// Each returns a nested map[string]any; the Flatten and Expand helpers
// convert between nested documents and the flat dotted property names a
// configuration store uses.
package loader

import (
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() (map[string]any, error)
}

// FileLoader is the interface for loaders that read from files.
type FileLoader interface {
	Loader
	// LoadFrom reads configuration from a specific path.
	LoadFrom(path string) (map[string]any, error)
}

// ReaderLoader is the interface for loaders that read from io.Reader.
type ReaderLoader interface {
	// LoadFromReader reads configuration from a reader.
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Flatten converts a nested document into a flat map keyed by dotted
// property names. Nested maps become path segments; every other value
// (including slices) is kept as-is under its dotted name.
func Flatten(doc map[string]any) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, "", doc)
	return flat
}

// FlatKeys returns the dotted property names of a nested document in
// sorted order.
func FlatKeys(doc map[string]any) []string {
	flat := Flatten(doc)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Expand converts a flat dotted-name map back into a nested document.
// Later keys win when a scalar and a table collide.
func Expand(flat map[string]any) map[string]any {
	doc := make(map[string]any)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		setByPath(doc, key, flat[key])
	}
	return doc
}

// flattenInto recursively flattens doc under prefix.
func flattenInto(flat map[string]any, prefix string, doc map[string]any) {
	for key, value := range doc {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(flat, name, nested)
			continue
		}
		flat[name] = value
	}
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data

	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			next := make(map[string]any)
			current[part] = next
			current = next
		}
	}

	if len(parts) > 0 {
		current[parts[len(parts)-1]] = value
	}
}
