package linkpub

import "context"

// Snapshot is the unit of persistence: the link map and its metadata.
type Snapshot struct {
	Links LinkMap
	Metadata
}

// SnapshotStore persists a single snapshot.
type SnapshotStore interface {
	// Load returns the stored snapshot.
	// Returns ENOTFOUND if nothing is stored and EINVALID if the stored
	// snapshot is malformed.
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the stored snapshot. A concurrent or interrupted Save
	// never leaves a partially written snapshot behind.
	Save(ctx context.Context, snap *Snapshot) error
}
