// Package event implements change notification for configuration stores.
//
// Every public mutation on a configuration fires an Event pair: one with
// BeforeUpdate set before the underlying storage is touched, and one with
// BeforeUpdate cleared after the mutation completed. Listeners subscribe
// through a Registry, either to a concrete event Type or to the TypeAny
// wildcard, and are invoked synchronously in registration order.
//
// Compound operations (for example a set implemented as clear followed by
// add) can additionally expose their internal sub-steps as detail events.
// Detail events are off by default and controlled per Source via
// SetDetailEvents. With detail events enabled the enclosing before event is
// always the first event observed and the enclosing after event is always
// the last; any number of detail events may appear between them.
package event
