package ports

import "github.com/resq-ai/resq-core/domain/entities"

// SeedParser parses raw bytes into the initial store contents.
type SeedParser interface {
	// Parse unmarshals seed bytes into a Seed.
	Parse(data []byte) (*entities.Seed, error)
}
