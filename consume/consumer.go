package consume

import (
	"context"
	"time"

	"github.com/fwojciec/linkpub"
)

// Consumer holds the long-lived collaborators shared by every Session: the
// identity, the host rotation, the selected transport and the snapshot store.
type Consumer struct {
	Identity  *linkpub.Identity
	Hosts     *linkpub.HostRotation
	Transport linkpub.Transport
	Store     linkpub.SnapshotStore
	Policy    linkpub.FreshnessPolicy

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Open starts a session and loads the cached snapshot. Storage that is
// missing or malformed leaves the session at cold start; wrap Store with a
// logging decorator to observe that.
//
// Callers must Close the session, typically with defer, so that cache
// changes are persisted on every exit path.
func (c *Consumer) Open(ctx context.Context) *Session {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	cache := NewCache(c.Store)
	_ = cache.Load(ctx)

	return &Session{
		engine: &Engine{
			Identity:  c.Identity,
			Hosts:     c.Hosts,
			Transport: c.Transport,
			Cache:     cache,
			Policy:    c.Policy,
		},
		now: now,
	}
}

// Session is one process or request lifetime of the cache.
// A Session is not safe for concurrent use.
type Session struct {
	engine *Engine
	now    func() time.Time
	closed bool
}

// Engine returns the session's fetch engine.
func (s *Session) Engine() *Engine { return s.engine }

// Cache returns the session's cache.
func (s *Session) Cache() *Cache { return s.engine.Cache }

// Now returns the session clock's current time.
func (s *Session) Now() time.Time { return s.now() }

// View starts a page view for pageURL.
func (s *Session) View(pageURL string) *View {
	return &View{session: s, pageURL: pageURL}
}

// Close persists the cache if it changed. Calling Close more than once is
// a no-op. A persist failure is returned but leaves the session closed;
// callers are expected to log it rather than fail the page.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.engine.Cache.Persist(ctx)
}

// View serves the links of one page view.
type View struct {
	session *Session
	pageURL string
	queue   *linkpub.LinkQueue
}

// PageURL returns the page this view serves.
func (v *View) PageURL() string { return v.pageURL }

// Select returns up to limit links not yet served in this view; NoLimit
// returns all of them. The first call refreshes the cache if due and takes
// a snapshot of the page's links; later calls never fetch.
func (v *View) Select(ctx context.Context, limit int) []linkpub.Link {
	if v.queue == nil {
		v.session.engine.EnsureFresh(ctx, v.session.now())
		v.queue = linkpub.NewLinkQueue(v.session.engine.Cache.Links(v.pageURL))
	}
	return v.queue.Select(limit)
}

// Links renders the next limit links as HTML anchors.
func (v *View) Links(ctx context.Context, limit int) string {
	return linkpub.RenderLinksString(v.Select(ctx, limit))
}
