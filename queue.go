package linkpub

// NoLimit makes LinkQueue.Select return every remaining link.
const NoLimit = -1

// LinkQueue hands out the links for one page view, front to back.
// It is created once per view and never refilled.
type LinkQueue struct {
	links []Link
}

// NewLinkQueue returns a queue over a copy of links.
func NewLinkQueue(links []Link) *LinkQueue {
	return &LinkQueue{links: append([]Link(nil), links...)}
}

// Select removes and returns up to limit links from the front of the queue.
// A negative limit returns all remaining links.
func (q *LinkQueue) Select(limit int) []Link {
	if limit < 0 || limit > len(q.links) {
		limit = len(q.links)
	}
	out := q.links[:limit:limit]
	q.links = q.links[limit:]
	return out
}

// Len returns the number of links left.
func (q *LinkQueue) Len() int {
	return len(q.links)
}
