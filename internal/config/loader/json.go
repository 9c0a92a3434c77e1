package loader

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSONLoader loads configuration from JSON files.
type JSONLoader struct {
	fs   FileSystem
	path string
}

// NewJSONLoader creates a new JSON loader for the given path.
func NewJSONLoader(path string) *JSONLoader {
	return &JSONLoader{
		fs:   DefaultFS(),
		path: path,
	}
}

// NewJSONLoaderWithFS creates a JSON loader with a custom file system.
func NewJSONLoaderWithFS(fs FileSystem, path string) *JSONLoader {
	return &JSONLoader{
		fs:   fs,
		path: path,
	}
}

// Load reads configuration from the configured path.
func (l *JSONLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads configuration from a specific path.
func (l *JSONLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return l.parse(path, data)
}

// LoadFromReader reads configuration from an io.Reader.
func (l *JSONLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return l.parse("<reader>", data)
}

// parse parses JSON data into a map.
func (l *JSONLoader) parse(source string, data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{
			Path:    source,
			Message: "invalid JSON document",
		}
	}

	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, &ParseError{
			Path:    source,
			Message: fmt.Sprintf("top-level JSON value must be an object, got %s", result.Type),
		}
	}

	doc, ok := result.Value().(map[string]any)
	if !ok {
		return nil, &ParseError{
			Path:    source,
			Message: "top-level JSON value must be an object",
		}
	}
	return doc, nil
}

// Marshal serializes a nested document to JSON. The document is written
// property by property so that dotted names produced by Flatten round-trip
// into nested objects.
func (l *JSONLoader) Marshal(doc map[string]any) ([]byte, error) {
	flat := Flatten(doc)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []byte("{}")
	var err error
	for _, key := range keys {
		out, err = sjson.SetBytes(out, key, flat[key])
		if err != nil {
			return nil, fmt.Errorf("marshaling property %s: %w", key, err)
		}
	}
	return out, nil
}
