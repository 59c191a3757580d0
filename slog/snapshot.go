package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkpub"
)

// Ensure LoggingSnapshotStore implements linkpub.SnapshotStore.
var _ linkpub.SnapshotStore = (*LoggingSnapshotStore)(nil)

// LoggingSnapshotStore wraps a SnapshotStore with debug logging.
type LoggingSnapshotStore struct {
	next   linkpub.SnapshotStore
	logger *slog.Logger
}

// NewLoggingSnapshotStore creates a new LoggingSnapshotStore.
func NewLoggingSnapshotStore(next linkpub.SnapshotStore, logger *slog.Logger) *LoggingSnapshotStore {
	return &LoggingSnapshotStore{next: next, logger: logger}
}

// Load delegates to the wrapped store and logs the operation.
func (s *LoggingSnapshotStore) Load(ctx context.Context) (snap *linkpub.Snapshot, err error) {
	defer func(begin time.Time) {
		pages := 0
		if snap != nil {
			pages = len(snap.Links)
		}
		s.logger.Debug("snapshot load",
			"pages", pages,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Load(ctx)
}

// Save delegates to the wrapped store and logs the operation.
func (s *LoggingSnapshotStore) Save(ctx context.Context, snap *linkpub.Snapshot) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("snapshot save",
			"pages", len(snap.Links),
			"status", string(snap.LastStatus),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, snap)
}
