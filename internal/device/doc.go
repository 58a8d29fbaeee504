// Package device manages the device inventory, device types, and the
// status change audit trail.
//
// # Layers
//
// Repository, TypeRepository, and StatusChangeRepository are the SQLite
// persistence interfaces. Registry wraps the device Repository with an
// in-memory cache; cached entries are deep-copied on every read and
// write so callers can never mutate cache internals.
//
// StatusChanger is the single write path for device status. A transition
// updates the device row and appends an audit record in one transaction,
// invalidates the cache synchronously, then emits MQTT and telemetry
// events best effort. Transitions that would not change the status are
// rejected with ErrNoOpTransition and leave no trace.
//
// # Status semantics
//
// Status values are free-form labels owned by the device type. The
// package validates only that they are non-blank; interpreting "on"
// versus "heating" is up to scenarios and operators.
package device
