package validation

import (
	stdErrors "errors"
	"testing"

	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inventoryProps struct {
	InitialItems []entities.SupplyItem `json:"initialItems" validate:"dive"`
}

func TestDecode_Valid(t *testing.T) {
	args := map[string]any{
		"initialItems": []any{
			map[string]any{"id": "1", "name": "Bandages", "count": 45, "category": "medical", "critical": false},
		},
	}

	var props inventoryProps
	require.NoError(t, Decode(args, &props))
	require.Len(t, props.InitialItems, 1)
	assert.Equal(t, 45, props.InitialItems[0].Count)
	assert.Equal(t, entities.CategoryMedical, props.InitialItems[0].Category)
}

func TestDecode_StructTagViolation(t *testing.T) {
	args := map[string]any{
		"initialItems": []any{
			map[string]any{"id": "1", "name": "Rifles", "count": 1, "category": "weapons"},
		},
	}

	var props inventoryProps
	err := Decode(args, &props)
	require.Error(t, err)

	var sve *errors.SchemaValidationError
	require.True(t, stdErrors.As(err, &sve))
	assert.Equal(t, "initialItems[0].category", sve.Field)
	assert.Equal(t, "oneof=medical food equipment", sve.Expected)
	assert.Equal(t, "weapons", sve.Actual)
}

func TestDecode_TypeMismatch(t *testing.T) {
	var props inventoryProps
	err := Decode(map[string]any{"initialItems": "none"}, &props)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal arguments")
}

func TestSlice(t *testing.T) {
	items := []entities.SupplyItem{
		{ID: "1", Name: "Water", Category: entities.CategoryFood, Count: 10},
		{ID: "", Name: "Tents", Category: entities.CategoryEquipment, Count: 3},
	}

	err := Slice("supplies", items)
	require.Error(t, err)

	var sve *errors.SchemaValidationError
	require.True(t, stdErrors.As(err, &sve))
	assert.Equal(t, "supplies[1].id", sve.Field)
	assert.Equal(t, "required", sve.Expected)

	assert.NoError(t, Slice("supplies", items[:1]))
}
