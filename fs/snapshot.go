// Package fs provides file-based storage for the link cache snapshot.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/linkpub"
)

// Ensure SnapshotStore implements linkpub.SnapshotStore at compile time.
var _ linkpub.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps the snapshot in a single JSON file.
//
// Saves write a temporary file in the same directory and rename it over the
// target, so readers see either the old or the new snapshot, never a mix.
// Concurrent writers are not serialized; the last rename wins.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a store for the file at path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Path returns the snapshot file location.
func (s *SnapshotStore) Path() string {
	return s.path
}

// fileSnapshot is the on-disk format. Null fields mean "none".
type fileSnapshot struct {
	Data           linkpub.LinkMap `json:"data"`
	Version        *string         `json:"version"`
	RetrieveDate   *time.Time      `json:"retrieve_date"`
	RetrieveStatus *linkpub.Status `json:"retrieve_status"`
}

// Load reads the snapshot file.
// Returns ENOTFOUND if the file does not exist and EINVALID if it is malformed.
func (s *SnapshotStore) Load(ctx context.Context) (*linkpub.Snapshot, error) {
	buf, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, linkpub.Errorf(linkpub.ENOTFOUND, "snapshot %s not found", s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return DecodeSnapshot(buf)
}

// Save atomically replaces the snapshot file, creating its directory if needed.
func (s *SnapshotStore) Save(ctx context.Context, snap *linkpub.Snapshot) error {
	buf, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	// No-op after a successful rename.
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// EncodeSnapshot serializes a snapshot to the on-disk format.
func EncodeSnapshot(snap *linkpub.Snapshot) ([]byte, error) {
	f := fileSnapshot{Data: snap.Links}
	if f.Data == nil {
		f.Data = linkpub.LinkMap{}
	}
	if snap.Validator != "" {
		f.Version = &snap.Validator
	}
	if !snap.LastAttempt.IsZero() {
		t := snap.LastAttempt.UTC()
		f.RetrieveDate = &t
	}
	if snap.LastStatus != linkpub.StatusNone {
		f.RetrieveStatus = &snap.LastStatus
	}
	return json.Marshal(f)
}

// DecodeSnapshot parses the on-disk format.
// Returns EINVALID if the content is not a well-formed snapshot.
func DecodeSnapshot(buf []byte) (*linkpub.Snapshot, error) {
	var f fileSnapshot
	if err := json.Unmarshal(buf, &f); err != nil {
		return nil, linkpub.Errorf(linkpub.EINVALID, "decode snapshot: %v", err)
	}
	if f.Data == nil {
		return nil, linkpub.Errorf(linkpub.EINVALID, "snapshot has no data")
	}

	if (f.RetrieveDate == nil) != (f.RetrieveStatus == nil) {
		return nil, linkpub.Errorf(linkpub.EINVALID, "retrieve date and status must be set together")
	}

	snap := &linkpub.Snapshot{Links: f.Data}
	if f.Version != nil {
		snap.Validator = *f.Version
	}
	if f.RetrieveDate != nil {
		snap.LastAttempt = f.RetrieveDate.UTC()
	}
	if f.RetrieveStatus != nil {
		switch *f.RetrieveStatus {
		case linkpub.StatusSuccess, linkpub.StatusFailure:
			snap.LastStatus = *f.RetrieveStatus
		default:
			return nil, linkpub.Errorf(linkpub.EINVALID, "unknown retrieve status %q", *f.RetrieveStatus)
		}
	}
	return snap, nil
}
