package entities

import "encoding/json"

// CapabilityKind distinguishes the two capability variants an agent can select.
type CapabilityKind string

const (
	// KindTool is a data-fetching function that returns a schema-shaped value.
	KindTool CapabilityKind = "tool"

	// KindComponent is a renderable UI artifact bound to the shared state store.
	KindComponent CapabilityKind = "component"
)

// String returns the kind as a string.
func (k CapabilityKind) String() string {
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k CapabilityKind) Valid() bool {
	return k == KindTool || k == KindComponent
}

// CapabilityInfo is the serializable description of a registered capability,
// advertised to the agent backend so it knows what it may invoke.
type CapabilityInfo struct {
	// OutputSchema is the JSON Schema of a tool's return value. Empty for components.
	OutputSchema json.RawMessage `json:"output_schema,omitempty"`

	// InputSchema is the JSON Schema the arguments must satisfy.
	InputSchema json.RawMessage `json:"input_schema"`

	Name        string         `json:"name"`
	Kind        CapabilityKind `json:"kind"`
	Description string         `json:"description"`
}
