package ports

import "github.com/resq-ai/resq-core/domain/entities"

// SnapshotStore persists shared state snapshots keyed by thread.
type SnapshotStore interface {
	// Save persists the snapshot, replacing any earlier one for the same thread.
	Save(snapshot entities.Snapshot) error

	// Load returns the latest snapshot for threadID.
	// Returns (nil, nil) if nothing was saved for that thread.
	Load(threadID string) (*entities.Snapshot, error)

	// Location returns the path of the backing store (for user messaging).
	Location() string
}
