package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/confkit/internal/config/event"
	"github.com/dshills/confkit/internal/config/loader"
	"github.com/dshills/confkit/internal/config/watcher"
)

// TypeReload is the event type FileConfiguration fires around re-reading
// its backing file. It is an extension type: the event core knows nothing
// about it, which is exactly how derived stores are meant to add their own
// mutation kinds. The event Name carries the file path.
const TypeReload = event.Type("reload")

// Format identifies a configuration file format.
type Format int

const (
	// FormatTOML is a TOML document (.toml).
	FormatTOML Format = iota
	// FormatYAML is a YAML document (.yaml, .yml).
	FormatYAML
	// FormatJSON is a JSON document (.json).
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatForPath derives the format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// FileConfiguration is a BaseConfiguration backed by a TOML, YAML or JSON
// file. Nested tables in the document become dotted property names.
//
// Load populates the store without firing events. Reload fires a
// TypeReload before/after pair around clearing and repopulating the store;
// with detail events enabled the intermediate clear and add operations
// surface between the pair.
type FileConfiguration struct {
	*BaseConfiguration

	fs     loader.FileSystem
	path   string
	format Format

	w *watcher.Watcher
}

// FileOption configures a FileConfiguration.
type FileOption func(*FileConfiguration)

// WithFileSystem sets the file system used for reading. Mainly for tests.
func WithFileSystem(fs loader.FileSystem) FileOption {
	return func(c *FileConfiguration) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// WithFormat overrides the format derived from the file extension.
func WithFormat(f Format) FileOption {
	return func(c *FileConfiguration) {
		c.format = f
	}
}

// NewFileConfiguration creates a configuration backed by path. The format
// is derived from the extension unless overridden with WithFormat.
func NewFileConfiguration(path string, opts ...FileOption) (*FileConfiguration, error) {
	c := &FileConfiguration{
		BaseConfiguration: New(),
		fs:                loader.DefaultFS(),
		path:              path,
		format:            Format(-1),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.format == Format(-1) {
		format, err := FormatForPath(path)
		if err != nil {
			return nil, err
		}
		c.format = format
	}

	return c, nil
}

// Path returns the backing file path.
func (c *FileConfiguration) Path() string {
	return c.path
}

// Format returns the document format.
func (c *FileConfiguration) Format() Format {
	return c.format
}

// Load reads the backing file and populates the store. The per-property
// add events are suppressed unless detail events are enabled, so with the
// default settings listeners do not observe the initial load. A missing
// file leaves the store empty and is not an error.
func (c *FileConfiguration) Load() error {
	doc, err := c.read()
	if err != nil {
		return err
	}

	c.SetDetailEvents(false)
	err = c.populate(doc)
	c.SetDetailEvents(true)
	return err
}

// Reload re-reads the backing file, firing a TypeReload event pair around
// clearing and repopulating the store. The file is parsed before the
// before-event fires, so a parse failure produces no events at all.
func (c *FileConfiguration) Reload() error {
	doc, err := c.read()
	if err != nil {
		return err
	}

	if err := c.FireEvent(TypeReload, c.path, nil, true); err != nil {
		return err
	}

	c.SetDetailEvents(false)
	err = c.repopulate(doc)
	c.SetDetailEvents(true)
	if err != nil {
		return err
	}

	return c.FireEvent(TypeReload, c.path, nil, false)
}

// Save marshals the current store back to the backing file.
func (c *FileConfiguration) Save() error {
	if c.path == "" {
		return ErrNoPath
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// Marshal serializes the current store in the configured format.
func (c *FileConfiguration) Marshal() ([]byte, error) {
	flat := make(map[string]any, c.Len())
	for _, key := range c.Keys() {
		if v, ok := c.Get(key); ok {
			flat[key] = v
		}
	}
	doc := loader.Expand(flat)

	switch c.format {
	case FormatTOML:
		return loader.NewTOMLLoader(c.path).Marshal(doc)
	case FormatYAML:
		return loader.NewYAMLLoader(c.path).Marshal(doc)
	case FormatJSON:
		return loader.NewJSONLoader(c.path).Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, c.format)
	}
}

// StartWatching begins watching the backing file and reloads on change.
// Reload errors from watch-triggered reloads are dropped, matching the
// fire-and-forget nature of file notifications; callers that need
// stronger guarantees should call Reload directly.
func (c *FileConfiguration) StartWatching() error {
	if c.path == "" {
		return ErrNoPath
	}
	if c.w != nil {
		return nil
	}

	w := watcher.New()
	if err := w.Watch(c.path); err != nil {
		return err
	}
	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			return
		}
		_ = c.Reload()
	})
	if err := w.Start(); err != nil {
		return err
	}

	c.w = w
	return nil
}

// StopWatching stops watching the backing file.
func (c *FileConfiguration) StopWatching() {
	if c.w != nil {
		c.w.Stop()
		c.w = nil
	}
}

// read parses the backing file into a nested document.
func (c *FileConfiguration) read() (map[string]any, error) {
	switch c.format {
	case FormatTOML:
		return loader.NewTOMLLoaderWithFS(c.fs, c.path).Load()
	case FormatYAML:
		return loader.NewYAMLLoaderWithFS(c.fs, c.path).Load()
	case FormatJSON:
		return loader.NewJSONLoaderWithFS(c.fs, c.path).Load()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, c.format)
	}
}

// populate adds every property of doc to the store.
func (c *FileConfiguration) populate(doc map[string]any) error {
	if doc == nil {
		return nil
	}
	flat := loader.Flatten(doc)
	for _, key := range loader.FlatKeys(doc) {
		if err := c.AddProperty(key, flat[key]); err != nil {
			return err
		}
	}
	return nil
}

// repopulate clears the store and adds every property of doc.
func (c *FileConfiguration) repopulate(doc map[string]any) error {
	if err := c.Clear(); err != nil {
		return err
	}
	return c.populate(doc)
}
