package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/linkpub"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", linkpub.ErrorMessage(err))
		return err
	}
	if cfg.SiteGUID != "" {
		if err := linkpub.ValidateGUID(cfg.SiteGUID); err != nil {
			fmt.Fprintf(deps.Stderr, "warning: site GUID: %s\n", linkpub.ErrorMessage(err))
		}
	}

	disabled, _ := linkpub.ParseStrategies(cfg.DisabledStrategies)
	var strategies []string
	for _, s := range []linkpub.Strategy{linkpub.StrategyFetchCall, linkpub.StrategyFullClient, linkpub.StrategyRawSocket} {
		if !disabled[s] {
			strategies = append(strategies, string(s))
		}
	}
	if len(strategies) == 0 {
		fmt.Fprintln(deps.Stderr, "warning: every transport strategy is disabled; no links will be fetched")
	}

	fmt.Fprintf(deps.Stdout, "Hosts:      %s\n", strings.Join(cfg.Hosts, ", "))
	fmt.Fprintf(deps.Stdout, "Consumer:   %s\n", cfg.ConsumerGUID)
	fmt.Fprintf(deps.Stdout, "Cache:      %s (%s)\n", cfg.CachePath, cfg.CacheBackend)
	fmt.Fprintf(deps.Stdout, "Transports: %s\n", strings.Join(strategies, ", "))
	fmt.Fprintln(deps.Stdout, "Configuration OK")
	return nil
}
