// Package config implements a mutable configuration store with change
// notification.
//
// A BaseConfiguration wraps a key/value Store and fires a before/after
// event pair around every public mutation: AddProperty, SetProperty,
// ClearProperty and Clear. Listeners subscribe through the embedded
// event.Source, either to a concrete event type or to the event.TypeAny
// wildcard. Enabling detail events additionally exposes the internal
// sub-steps of compound operations (a SetProperty decomposes into a clear
// followed by an add).
//
// FileConfiguration builds a file-backed store on top, loading TOML, YAML
// or JSON documents through the loader package and optionally reloading on
// file changes through the watcher package.
package config
