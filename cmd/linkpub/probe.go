package main

import (
	"fmt"

	"github.com/fwojciec/linkpub"
	"golang.org/x/sync/errgroup"
)

// Run executes the probe command. The cache is not read or written.
func (c *ProbeCmd) Run(deps *Dependencies) error {
	identity, err := deps.Config.Identity()
	if err != nil {
		return err
	}
	path := identity.QueryPath()
	hosts := deps.Config.Hosts

	outcomes := make([]linkpub.Outcome, len(hosts))
	var g errgroup.Group
	for i, host := range hosts {
		g.Go(func() error {
			outcomes[i] = deps.Transport.Fetch(deps.Ctx, host, path, "")
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, host := range hosts {
		out := outcomes[i]
		switch out.Kind {
		case linkpub.OutcomeUpdated:
			links, err := linkpub.DecodeLinkMap(out.Body)
			if err != nil {
				failed++
				fmt.Fprintf(deps.Stdout, "%s\tinvalid payload: %s\n", host, linkpub.ErrorMessage(err))
				continue
			}
			fmt.Fprintf(deps.Stdout, "%s\tok\t%d pages\n", host, len(links))
		case linkpub.OutcomeNotModified:
			fmt.Fprintf(deps.Stdout, "%s\tnot modified\n", host)
		default:
			failed++
			fmt.Fprintf(deps.Stdout, "%s\tfailed: %s\n", host, out.Reason)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d hosts failed", failed, len(hosts))
	}
	return nil
}
