package consume

import (
	"context"
	"time"

	"github.com/fwojciec/linkpub"
)

// Engine decides when to contact the dispenser and feeds the result into
// the cache. It never returns errors: failures are recorded in the cache
// and only delay the next attempt.
type Engine struct {
	Identity  *linkpub.Identity
	Hosts     *linkpub.HostRotation
	Transport linkpub.Transport
	Cache     *Cache
	Policy    linkpub.FreshnessPolicy
}

// EnsureFresh makes one fetch attempt if the freshness policy says a refresh
// is due at now. It reports whether an attempt was made.
func (e *Engine) EnsureFresh(ctx context.Context, now time.Time) bool {
	if !e.Policy.Due(e.Cache.Metadata(), now) {
		return false
	}
	e.Refresh(ctx, now)
	return true
}

// Refresh makes exactly one fetch attempt regardless of the policy and
// returns its outcome.
func (e *Engine) Refresh(ctx context.Context, now time.Time) linkpub.Outcome {
	host := e.Hosts.Next()
	path := e.Identity.QueryPath()
	out := e.Transport.Fetch(ctx, host, path, e.Cache.Metadata().Validator)
	e.Cache.Apply(out, now)
	return out
}
