package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/linkpub"
	"github.com/fwojciec/linkpub/consume"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Config    consume.Config
	Strategy  linkpub.Strategy
	Transport linkpub.Transport
	Store     linkpub.SnapshotStore
	Consumer  *consume.Consumer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Cache   string `help:"Cache location (overrides LINKPUB_CACHE_PATH)"`
	Backend string `help:"Cache backend: file or sqlite (overrides LINKPUB_CACHE_BACKEND)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Links   LinksCmd   `cmd:"" help:"Print the links for a page"`
	Refresh RefreshCmd `cmd:"" help:"Refresh the link cache from the dispenser"`
	Status  StatusCmd  `cmd:"" help:"Show the state of the link cache"`
	Probe   ProbeCmd   `cmd:"" help:"Fetch once from every configured host"`
	Check   CheckCmd   `cmd:"" help:"Validate the configuration"`
}

// LinksCmd is the "links" subcommand.
type LinksCmd struct {
	Page  string `arg:"" help:"Page URL as stored by the dispenser, e.g. /index.html"`
	Limit int    `short:"n" default:"-1" help:"Maximum number of links (-1 for all)"`
	Plain bool   `help:"Print URL and title per line instead of HTML"`
}

// RefreshCmd is the "refresh" subcommand.
type RefreshCmd struct {
	Force bool `short:"f" help:"Refresh even if the cache is fresh"`
}

// StatusCmd is the "status" subcommand.
type StatusCmd struct{}

// ProbeCmd is the "probe" subcommand.
type ProbeCmd struct{}

// CheckCmd is the "check" subcommand.
type CheckCmd struct{}

// closeSession persists the session. Persist failures are logged, never
// returned: the links were already served.
func closeSession(deps *Dependencies, session *consume.Session) {
	if err := session.Close(context.WithoutCancel(deps.Ctx)); err != nil {
		deps.Logger.Error("persist link cache", "err", err)
	}
}
