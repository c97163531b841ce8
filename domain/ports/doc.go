// Package ports defines the interfaces the application layer depends on.
// Domain and application logic depend on these abstractions; the state store,
// lifecycle manager and infrastructure adapters implement them.
package ports
