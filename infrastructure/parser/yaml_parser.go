package parser

import (
	"fmt"

	"github.com/resq-ai/resq-core/application/validation"
	"github.com/resq-ai/resq-core/domain/entities"
	"github.com/resq-ai/resq-core/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlSeedParser implements SeedParser for YAML.
type YamlSeedParser struct{}

// NewYamlSeedParser creates a new YamlSeedParser.
func NewYamlSeedParser() ports.SeedParser {
	return &YamlSeedParser{}
}

// Parse unmarshals YAML bytes into a Seed. Supply items are validated with
// the same rules the store applies; markers with non-finite coordinates are
// dropped.
func (p *YamlSeedParser) Parse(data []byte) (*entities.Seed, error) {
	var seed entities.Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	if err := validation.Slice("supplies", seed.Supplies); err != nil {
		return nil, err
	}
	seed.Markers = entities.FilterFiniteMarkers(seed.Markers)
	return &seed, nil
}
