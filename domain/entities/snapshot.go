package entities

import "time"

// Snapshot is an immutable copy of the shared state for one thread at one version.
type Snapshot struct {
	TakenAt  time.Time    `json:"taken_at" yaml:"taken_at"`
	ThreadID string       `json:"thread_id" yaml:"thread_id"`
	Supplies []SupplyItem `json:"supplies" yaml:"supplies"`
	Markers  []MapMarker  `json:"markers" yaml:"markers"`
	Version  uint64       `json:"version" yaml:"version"`
}

// TotalUnits sums the counts of every supply item.
func (s Snapshot) TotalUnits() int {
	total := 0
	for _, item := range s.Supplies {
		total += item.Count
	}
	return total
}

// Empty reports whether the snapshot holds neither supplies nor markers.
func (s Snapshot) Empty() bool {
	return len(s.Supplies) == 0 && len(s.Markers) == 0
}

// Seed is the initial data a store is created with, before any thread is established.
type Seed struct {
	Supplies []SupplyItem `json:"supplies" yaml:"supplies"`
	Markers  []MapMarker  `json:"markers,omitempty" yaml:"markers,omitempty"`
}
