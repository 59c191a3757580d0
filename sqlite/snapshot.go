package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/linkpub"
)

// Ensure SnapshotStore implements linkpub.SnapshotStore at compile time.
var _ linkpub.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps the snapshot in a single-row table.
// Saves replace the row in one transaction.
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Load reads the snapshot row.
// Returns ENOTFOUND if nothing was saved and EINVALID if the row is malformed.
func (s *SnapshotStore) Load(ctx context.Context) (*linkpub.Snapshot, error) {
	var (
		data    string
		version sql.NullString
		date    sql.NullString
		status  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT data, version, retrieve_date, retrieve_status
		FROM snapshot WHERE id = 1
	`).Scan(&data, &version, &date, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, linkpub.Errorf(linkpub.ENOTFOUND, "snapshot not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var links linkpub.LinkMap
	if err := json.Unmarshal([]byte(data), &links); err != nil {
		return nil, linkpub.Errorf(linkpub.EINVALID, "decode snapshot data: %v", err)
	}
	if links == nil {
		return nil, linkpub.Errorf(linkpub.EINVALID, "snapshot has no data")
	}
	if date.Valid != status.Valid {
		return nil, linkpub.Errorf(linkpub.EINVALID, "retrieve date and status must be set together")
	}

	snap := &linkpub.Snapshot{Links: links}
	snap.Validator = version.String
	if date.Valid {
		t, err := parseRFC3339(date.String, "retrieve_date")
		if err != nil {
			return nil, linkpub.Errorf(linkpub.EINVALID, "%v", err)
		}
		snap.LastAttempt = t.UTC()
	}
	if status.Valid {
		switch st := linkpub.Status(status.String); st {
		case linkpub.StatusSuccess, linkpub.StatusFailure:
			snap.LastStatus = st
		default:
			return nil, linkpub.Errorf(linkpub.EINVALID, "unknown retrieve status %q", status.String)
		}
	}
	return snap, nil
}

// Save inserts or replaces the snapshot row.
func (s *SnapshotStore) Save(ctx context.Context, snap *linkpub.Snapshot) error {
	links := snap.Links
	if links == nil {
		links = linkpub.LinkMap{}
	}
	data, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot data: %w", err)
	}

	var date sql.NullString
	if !snap.LastAttempt.IsZero() {
		date = nullString(snap.LastAttempt.UTC().Format(time.RFC3339Nano))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshot (id, data, version, retrieve_date, retrieve_status)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			version = excluded.version,
			retrieve_date = excluded.retrieve_date,
			retrieve_status = excluded.retrieve_status
	`, string(data), nullString(snap.Validator), date, nullString(string(snap.LastStatus)))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
