package linkpub

import (
	"context"
	"sync"
)

// Candidate is a transport strategy the selector may choose.
type Candidate struct {
	Strategy Strategy

	// Available reports whether the strategy can be used in the current
	// environment. A nil Available means always available.
	Available func() bool

	// New constructs the transport once the candidate is selected.
	New func() Transport
}

// TransportSelector picks the first available candidate, in order, on first
// use and reuses it for its lifetime.
type TransportSelector struct {
	candidates []Candidate

	once      sync.Once
	strategy  Strategy
	transport Transport
}

// NewTransportSelector returns a selector over candidates in priority order.
func NewTransportSelector(candidates ...Candidate) *TransportSelector {
	return &TransportSelector{candidates: candidates}
}

// Select returns the chosen strategy and its transport. When no candidate is
// available the strategy is StrategyNone and the transport fails every
// request with ReasonNoTransport.
func (s *TransportSelector) Select() (Strategy, Transport) {
	s.once.Do(func() {
		for _, c := range s.candidates {
			if c.New == nil || (c.Available != nil && !c.Available()) {
				continue
			}
			s.strategy, s.transport = c.Strategy, c.New()
			return
		}
		s.strategy, s.transport = StrategyNone, noTransport
	})
	return s.strategy, s.transport
}

// Fetch delegates to the selected transport.
func (s *TransportSelector) Fetch(ctx context.Context, host, path, validator string) Outcome {
	_, t := s.Select()
	return t.Fetch(ctx, host, path, validator)
}

var noTransport = TransportFunc(func(context.Context, string, string, string) Outcome {
	return Failure(ReasonNoTransport)
})

// ParseStrategies converts strategy names to a set, for use as a disabled
// list. Unknown names return EINVALID.
func ParseStrategies(names []string) (map[Strategy]bool, error) {
	set := make(map[Strategy]bool, len(names))
	for _, name := range names {
		switch s := Strategy(name); s {
		case StrategyFetchCall, StrategyFullClient, StrategyRawSocket:
			set[s] = true
		default:
			return nil, Errorf(EINVALID, "unknown transport strategy %q", name)
		}
	}
	return set, nil
}
