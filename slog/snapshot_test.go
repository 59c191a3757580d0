package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/linkpub"
	"github.com/fwojciec/linkpub/mock"
	lpslog "github.com/fwojciec/linkpub/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingSnapshotStore_Load(t *testing.T) {
	t.Parallel()

	t.Run("logs page count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		snap := &linkpub.Snapshot{Links: linkpub.LinkMap{"/a": nil, "/b": nil}}
		inner := &mock.SnapshotStore{
			LoadFn: func(ctx context.Context) (*linkpub.Snapshot, error) {
				return snap, nil
			},
		}

		store := lpslog.NewLoggingSnapshotStore(inner, debugLogger(&buf))
		got, err := store.Load(context.Background())

		require.NoError(t, err)
		assert.Same(t, snap, got)
		output := buf.String()
		assert.Contains(t, output, "snapshot load")
		assert.Contains(t, output, "pages=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error when load fails", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SnapshotStore{
			LoadFn: func(ctx context.Context) (*linkpub.Snapshot, error) {
				return nil, linkpub.Errorf(linkpub.ENOTFOUND, "snapshot not found")
			},
		}

		store := lpslog.NewLoggingSnapshotStore(inner, debugLogger(&buf))
		_, err := store.Load(context.Background())

		assert.Equal(t, linkpub.ENOTFOUND, linkpub.ErrorCode(err))
		output := buf.String()
		assert.Contains(t, output, "pages=0")
		assert.Contains(t, output, "snapshot not found")
	})

	t.Run("stays quiet above debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SnapshotStore{
			LoadFn: func(ctx context.Context) (*linkpub.Snapshot, error) {
				return &linkpub.Snapshot{}, nil
			},
		}

		_, err := lpslog.NewLoggingSnapshotStore(inner, logger).Load(context.Background())

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestLoggingSnapshotStore_Save(t *testing.T) {
	t.Parallel()

	t.Run("delegates and logs status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var saved *linkpub.Snapshot
		inner := &mock.SnapshotStore{
			SaveFn: func(ctx context.Context, snap *linkpub.Snapshot) error {
				saved = snap
				return nil
			},
		}
		snap := &linkpub.Snapshot{
			Links:    linkpub.LinkMap{"/": nil},
			Metadata: linkpub.Metadata{LastStatus: linkpub.StatusFailure},
		}

		err := lpslog.NewLoggingSnapshotStore(inner, debugLogger(&buf)).Save(context.Background(), snap)

		require.NoError(t, err)
		assert.Same(t, snap, saved)
		output := buf.String()
		assert.Contains(t, output, "snapshot save")
		assert.Contains(t, output, "pages=1")
		assert.Contains(t, output, "status=failure")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SnapshotStore{
			SaveFn: func(ctx context.Context, snap *linkpub.Snapshot) error {
				return errors.New("disk full")
			},
		}

		err := lpslog.NewLoggingSnapshotStore(inner, debugLogger(&buf)).Save(context.Background(), &linkpub.Snapshot{})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"disk full\"")
	})
}
