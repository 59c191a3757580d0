package mock

import (
	"context"

	"github.com/fwojciec/linkpub"
)

var _ linkpub.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is a mock implementation of linkpub.SnapshotStore.
type SnapshotStore struct {
	LoadFn func(ctx context.Context) (*linkpub.Snapshot, error)
	SaveFn func(ctx context.Context, snap *linkpub.Snapshot) error
}

func (s *SnapshotStore) Load(ctx context.Context) (*linkpub.Snapshot, error) {
	return s.LoadFn(ctx)
}

func (s *SnapshotStore) Save(ctx context.Context, snap *linkpub.Snapshot) error {
	return s.SaveFn(ctx, snap)
}
