package main

import (
	"fmt"

	"github.com/fwojciec/linkpub"
)

// Run executes the links command.
func (c *LinksCmd) Run(deps *Dependencies) error {
	if c.Limit < linkpub.NoLimit {
		fmt.Fprintf(deps.Stderr, "error: limit must be -1 or greater\n")
		return linkpub.Errorf(linkpub.EINVALID, "invalid limit %d", c.Limit)
	}

	session := deps.Consumer.Open(deps.Ctx)
	defer closeSession(deps, session)

	view := session.View(c.Page)
	if !c.Plain {
		fmt.Fprintln(deps.Stdout, view.Links(deps.Ctx, c.Limit))
		return nil
	}
	for _, l := range view.Select(deps.Ctx, c.Limit) {
		fmt.Fprintf(deps.Stdout, "%s\t%s\n", l.URL, l.Title)
	}
	return nil
}
