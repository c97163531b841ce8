package schema

import (
	"encoding/json"
	"testing"

	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

func TestGenerateSchema_SupplyItem(t *testing.T) {
	schema, err := GenerateSchema(entities.SupplyItem{})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(schema, &decoded))

	properties, ok := decoded["properties"].(map[string]interface{})
	require.True(t, ok, "properties should be a map")
	assert.Contains(t, properties, "id")
	assert.Contains(t, properties, "category")
	assert.Contains(t, properties, "critical")
}

func TestGenerateSchema_EmptyStruct(t *testing.T) {
	type EmptyProps struct{}

	schema, err := GenerateSchema(EmptyProps{})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(schema, &decoded))
	assert.NotEmpty(t, schema)
}

func TestJSONSchema_Object(t *testing.T) {
	node := Object([]Field{
		Prop("id", String(Describe("Stable item id"))),
		Prop("count", Integer(Min(0))),
		Prop("category", Enum([]string{"medical", "food"})),
		Prop("zoom", Number(Default(13.0))),
	})

	data, err := MarshalJSONSchema(node)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "object", decoded["type"])
	assert.ElementsMatch(t, []any{"id", "count", "category"}, decoded["required"])

	props := decoded["properties"].(map[string]any)
	assert.Equal(t, "Stable item id", props["id"].(map[string]any)["description"])
	assert.Equal(t, "integer", props["count"].(map[string]any)["type"])
	assert.Equal(t, 0.0, props["count"].(map[string]any)["minimum"])
	assert.Equal(t, []any{"medical", "food"}, props["category"].(map[string]any)["enum"])
	assert.Equal(t, 13.0, props["zoom"].(map[string]any)["default"])
}

func TestMarshalJSONSchema_Nil(t *testing.T) {
	data, err := MarshalJSONSchema(nil)
	require.NoError(t, err)
	assert.Nil(t, data)
}

// The exported document must accept every value the node tree accepts.
func TestJSONSchema_AcceptsValidatedValues(t *testing.T) {
	node := mapSchema()
	res := Validate(node, map[string]any{
		"center":  []any{12.97, 77.59},
		"markers": []any{map[string]any{"lat": 12.97, "lng": 77.59, "title": "Zone A"}},
	})
	require.True(t, res.OK())

	data, err := MarshalJSONSchema(node)
	require.NoError(t, err)

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(data), gojsonschema.NewGoLoader(res.Value))
	require.NoError(t, err)
	assert.True(t, result.Valid(), "%v", result.Errors())

	result, err = gojsonschema.Validate(gojsonschema.NewBytesLoader(data), gojsonschema.NewGoLoader(map[string]any{"zoom": 3}))
	require.NoError(t, err)
	assert.False(t, result.Valid(), "center is required")
}

func TestJSONSchema_NonEmptyAdvertisesMinLength(t *testing.T) {
	node := Object([]Field{Prop("name", String(NonEmpty())), Prop("note", String())})

	data, err := MarshalJSONSchema(node)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	props := decoded["properties"].(map[string]any)
	assert.Equal(t, 1.0, props["name"].(map[string]any)["minLength"])
	assert.NotContains(t, props["note"].(map[string]any), "minLength")

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(data), gojsonschema.NewGoLoader(map[string]any{"name": "", "note": ""}))
	require.NoError(t, err)
	assert.False(t, result.Valid(), "empty name violates minLength")
}
