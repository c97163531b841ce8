// Package host dispatches agent invocations to registered capabilities.
//
// A Dispatcher resolves a capability by name, validates the agent's raw
// arguments against the capability's input schema and then either runs a tool
// (validating its output against the output schema) or mounts a component
// bound to the shared state of the active conversation thread. Every failure
// is reported as a typed error from the domain/errors package; panics raised
// by tools and components are recovered and never cross the dispatch boundary.
package host
