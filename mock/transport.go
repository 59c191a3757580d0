package mock

import (
	"context"

	"github.com/fwojciec/linkpub"
)

var _ linkpub.Transport = (*Transport)(nil)

// Transport is a mock implementation of linkpub.Transport.
type Transport struct {
	FetchFn func(ctx context.Context, host, path, validator string) linkpub.Outcome
}

func (t *Transport) Fetch(ctx context.Context, host, path, validator string) linkpub.Outcome {
	return t.FetchFn(ctx, host, path, validator)
}
