package parser

import (
	"testing"

	"github.com/resq-ai/resq-core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoSeed = `
supplies:
  - id: "1"
    name: Sterile Bandages
    count: 45
    category: medical
  - id: "2"
    name: O+ Blood Packs
    count: 2
    category: medical
    critical: true
markers:
  - lat: 12.97
    lng: 77.59
    title: Zone A
    type: fire
    severity: critical
  - lat: .nan
    lng: 77.6
    title: Broken
`

func TestYamlSeedParser_Parse(t *testing.T) {
	seed, err := NewYamlSeedParser().Parse([]byte(demoSeed))
	require.NoError(t, err)

	assert.Equal(t, testutil.DemoSupplies(), seed.Supplies)

	require.Len(t, seed.Markers, 1)
	assert.Equal(t, "Zone A", seed.Markers[0].Title)
}

func TestYamlSeedParser_Empty(t *testing.T) {
	seed, err := NewYamlSeedParser().Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, seed.Supplies)
	assert.Empty(t, seed.Markers)
}

func TestYamlSeedParser_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{
			name:  "unknown category",
			input: "supplies:\n  - {id: a, name: Water, count: 3, category: fuel}\n",
			field: "supplies[0].category",
		},
		{
			name:  "negative count",
			input: "supplies:\n  - {id: a, name: Water, count: -1, category: food}\n",
			field: "supplies[0].count",
		},
		{
			name:  "missing name",
			input: "supplies:\n  - {id: a, name: Water, count: 1, category: food}\n  - {id: b, count: 1, category: food}\n",
			field: "supplies[1].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYamlSeedParser().Parse([]byte(tt.input))
			testutil.RequireSchemaError(t, err, tt.field)
		})
	}
}

func TestYamlSeedParser_Malformed(t *testing.T) {
	_, err := NewYamlSeedParser().Parse([]byte("supplies: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse seed")
}
