package domain

import "time"

// Snapshot is the last successful fetch of one sensor. Attributes holds the
// payload as formatted at save time, so artwork URLs keep pointing at the
// files written then.
type Snapshot struct {
	Category   LibraryCategory `json:"category"`
	Records    []MediaRecord   `json:"records"`
	Attributes Attributes      `json:"attributes"`
	CycleID    string          `json:"cycle_id,omitempty"`
	SavedAt    time.Time       `json:"saved_at"`
}

// SnapshotStore persists last-fetch data (BoltDB + memory).
// Image bytes are never persisted.
type SnapshotStore interface {
	// === Snapshots ===
	GetSnapshot(entityID string) (Snapshot, bool)
	SaveSnapshot(entityID string, snapshot Snapshot) error
	DeleteSnapshot(entityID string)

	// === Categories ===
	GetCategories() ([]LibraryCategory, bool)
	SaveCategories(categories []LibraryCategory) error

	Close() error
}
