package linkpub

import (
	"context"
	"time"
)

// DefaultConnectTimeout bounds how long a transport waits to connect.
const DefaultConnectTimeout = 6 * time.Second

// DefaultUserAgent is sent with every dispenser request.
const DefaultUserAgent = "LinkPub client"

// Strategy names a transport implementation.
type Strategy string

// Transport strategies in selection priority order.
const (
	StrategyNone       Strategy = ""
	StrategyFetchCall  Strategy = "fetch-call"
	StrategyFullClient Strategy = "full-client"
	StrategyRawSocket  Strategy = "raw-socket"
)

// Transport performs one conditional GET against a dispenser host.
//
// Implementations never return errors: every failure is reported as an
// OutcomeFailure with one of the Reason constants, and every response is
// classified with ClassifyStatus so that all strategies agree.
type Transport interface {
	// Fetch requests path from host. If validator is not empty it is sent
	// as If-Modified-Since.
	Fetch(ctx context.Context, host, path, validator string) Outcome
}

// ClassifyStatus maps a parsed status code to an outcome.
// lastModified is the Last-Modified response header, or "".
func ClassifyStatus(code int, body []byte, lastModified string) Outcome {
	switch code {
	case 200:
		return Updated(body, lastModified)
	case 304:
		return NotModified()
	default:
		return Failure(UnexpectedStatus(code))
	}
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, host, path, validator string) Outcome

// Fetch calls f.
func (f TransportFunc) Fetch(ctx context.Context, host, path, validator string) Outcome {
	return f(ctx, host, path, validator)
}
