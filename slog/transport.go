// Package slog provides logging decorators for linkpub services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkpub"
)

// Ensure LoggingTransport implements linkpub.Transport.
var _ linkpub.Transport = (*LoggingTransport)(nil)

// LoggingTransport wraps a Transport with logging of every fetch attempt.
type LoggingTransport struct {
	next   linkpub.Transport
	logger *slog.Logger
}

// NewLoggingTransport creates a new LoggingTransport.
func NewLoggingTransport(next linkpub.Transport, logger *slog.Logger) *LoggingTransport {
	return &LoggingTransport{next: next, logger: logger}
}

// Fetch delegates to the wrapped transport and logs the outcome.
func (t *LoggingTransport) Fetch(ctx context.Context, host, path, validator string) (out linkpub.Outcome) {
	defer func(begin time.Time) {
		attrs := []any{
			"host", host,
			"path", path,
			"outcome", out.Kind.String(),
			"bytes", len(out.Body),
			"duration", time.Since(begin),
		}
		if out.Kind == linkpub.OutcomeFailure {
			t.logger.Warn("fetch", append(attrs, "reason", out.Reason)...)
			return
		}
		t.logger.Info("fetch", attrs...)
	}(time.Now())
	return t.next.Fetch(ctx, host, path, validator)
}
