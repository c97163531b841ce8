// Package schema provides the argument schema model used to validate and
// coerce agent-supplied capability arguments, plus JSON Schema export.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/invopop/jsonschema"
)

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// JSONSchema converts a node tree into its JSON Schema representation so the
// catalog can be advertised to the agent backend.
func JSONSchema(n Node) *jsonschema.Schema {
	c := n.common()
	s := &jsonschema.Schema{Description: c.description}
	if c.hasDefault {
		s.Default = cloneValue(c.def)
	}
	if c.min != nil {
		s.Minimum = json.Number(strconv.FormatFloat(*c.min, 'g', -1, 64))
	}
	if c.minLength > 0 {
		minLength := uint64(c.minLength)
		s.MinLength = &minLength
	}

	switch node := n.(type) {
	case *ObjectNode:
		s.Type = "object"
		s.Properties = jsonschema.NewProperties()
		for _, f := range node.fields {
			s.Properties.Set(f.Name, JSONSchema(f.Node))
			if !f.Node.common().optional {
				s.Required = append(s.Required, f.Name)
			}
		}
	case *ArrayNode:
		s.Type = "array"
		s.Items = JSONSchema(node.items)
	case *EnumNode:
		s.Type = "string"
		for _, v := range node.values {
			s.Enum = append(s.Enum, v)
		}
	default:
		s.Type = string(n.Kind())
	}
	return s
}

// MarshalJSONSchema renders the JSON Schema of n as compact JSON.
func MarshalJSONSchema(n Node) ([]byte, error) {
	if n == nil {
		return nil, nil
	}
	data, err := json.Marshal(JSONSchema(n))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
