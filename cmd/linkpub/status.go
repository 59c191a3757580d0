package main

import (
	"fmt"
	"strings"
	"time"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	session := deps.Consumer.Open(deps.Ctx)
	defer closeSession(deps, session)

	meta := session.Cache().Metadata()
	policy := session.Engine().Policy

	validator := meta.Validator
	if validator == "" {
		validator = "(none)"
	}
	lastAttempt, lastStatus, next := "(never)", "(none)", "now"
	if !meta.LastAttempt.IsZero() {
		lastAttempt = meta.LastAttempt.Format(time.RFC3339)
		lastStatus = string(meta.LastStatus)
		if n := policy.NextAttempt(meta); n.After(session.Now()) {
			next = n.Format(time.RFC3339)
		}
	}
	strategy := string(deps.Strategy)
	if strategy == "" {
		strategy = "(none available)"
	}

	fmt.Fprintf(deps.Stdout, "Cache:        %s (%s)\n", deps.Config.CachePath, deps.Config.CacheBackend)
	fmt.Fprintf(deps.Stdout, "Transport:    %s\n", strategy)
	fmt.Fprintf(deps.Stdout, "Hosts:        %s\n", strings.Join(session.Engine().Hosts.Hosts(), ", "))
	fmt.Fprintf(deps.Stdout, "Validator:    %s\n", validator)
	fmt.Fprintf(deps.Stdout, "Last attempt: %s\n", lastAttempt)
	fmt.Fprintf(deps.Stdout, "Last status:  %s\n", lastStatus)
	fmt.Fprintf(deps.Stdout, "Pages:        %d\n", len(session.Cache().Snapshot().Links))
	fmt.Fprintf(deps.Stdout, "Next refresh: %s\n", next)
	return nil
}
