package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/linkpub"
)

// Run executes the refresh command.
func (c *RefreshCmd) Run(deps *Dependencies) error {
	session := deps.Consumer.Open(deps.Ctx)
	defer closeSession(deps, session)

	engine := session.Engine()
	now := session.Now()
	meta := session.Cache().Metadata()

	if !c.Force && !engine.Policy.Due(meta, now) {
		next := engine.Policy.NextAttempt(meta)
		fmt.Fprintf(deps.Stdout, "Cache is fresh until %s. Use --force to refresh now.\n", next.Format(time.RFC3339))
		return nil
	}

	out := engine.Refresh(deps.Ctx, now)
	switch out.Kind {
	case linkpub.OutcomeUpdated:
		fmt.Fprintf(deps.Stdout, "Updated: %d pages\n", len(session.Cache().Snapshot().Links))
	case linkpub.OutcomeNotModified:
		fmt.Fprintln(deps.Stdout, "Not modified")
	default:
		fmt.Fprintf(deps.Stdout, "Failed: %s\n", out.Reason)
	}
	return nil
}
