// Package consume orchestrates fetching, caching and serving dispenser links.
// It ties the freshness policy, host rotation, transport selection and
// snapshot storage together behind a per-request Session and per-view View.
package consume

import (
	"context"
	"time"

	"github.com/fwojciec/linkpub"
)

// Cache holds the in-memory link map and metadata for one process or
// request lifetime, backed by a SnapshotStore.
type Cache struct {
	store linkpub.SnapshotStore
	snap  linkpub.Snapshot
	dirty bool
}

// NewCache returns an empty cache backed by store.
func NewCache(store linkpub.SnapshotStore) *Cache {
	return &Cache{store: store}
}

// Load replaces the in-memory state with the stored snapshot.
//
// Missing, unreadable or malformed storage resets the cache to cold start.
// The returned error is informational only; the cache is always usable.
func (c *Cache) Load(ctx context.Context) error {
	c.snap = linkpub.Snapshot{}
	c.dirty = false

	snap, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return linkpub.Errorf(linkpub.ENOTFOUND, "no snapshot stored")
	}
	c.snap = linkpub.Snapshot{Links: snap.Links.Clone(), Metadata: snap.Metadata}
	return nil
}

// Apply records the outcome of a fetch attempt made at now.
// Every attempt marks the cache dirty.
func (c *Cache) Apply(out linkpub.Outcome, now time.Time) {
	c.snap.LastAttempt = now
	c.dirty = true

	switch out.Kind {
	case linkpub.OutcomeNotModified:
		c.snap.LastStatus = linkpub.StatusSuccess
	case linkpub.OutcomeUpdated:
		links, err := linkpub.DecodeLinkMap(out.Body)
		if err != nil {
			c.snap.LastStatus = linkpub.StatusFailure
			return
		}
		c.snap.Links = links
		c.snap.Validator = out.Validator
		c.snap.LastStatus = linkpub.StatusSuccess
	default:
		c.snap.LastStatus = linkpub.StatusFailure
	}
}

// Persist writes the snapshot if anything changed since Load or the last
// successful Persist.
func (c *Cache) Persist(ctx context.Context) error {
	if !c.dirty {
		return nil
	}
	snap := c.Snapshot()
	if err := c.store.Save(ctx, &snap); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Dirty reports whether the cache has unsaved changes.
func (c *Cache) Dirty() bool { return c.dirty }

// Metadata returns the current bookkeeping.
func (c *Cache) Metadata() linkpub.Metadata { return c.snap.Metadata }

// Links returns a copy of the links cached for pageURL, or nil.
func (c *Cache) Links(pageURL string) []linkpub.Link {
	links, ok := c.snap.Links[pageURL]
	if !ok {
		return nil
	}
	return append([]linkpub.Link(nil), links...)
}

// Snapshot returns a deep copy of the current state.
func (c *Cache) Snapshot() linkpub.Snapshot {
	return linkpub.Snapshot{Links: c.snap.Links.Clone(), Metadata: c.snap.Metadata}
}
