// Package entities provides the core domain entities shared by every layer:
// capability kinds, supply items, map markers, store snapshots and the
// structured error and invocation result formats used on the wire.
package entities
