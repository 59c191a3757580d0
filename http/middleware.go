package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fwojciec/linkpub/consume"
)

type viewKey struct{}

// Middleware opens a cache session for every request and exposes a View for
// the request URI through the request context. The session is closed after
// the handler returns, even if it panics; a persist failure is logged and
// never affects the response.
func Middleware(consumer *consume.Consumer, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := consumer.Open(r.Context())
			defer func() {
				// The client may have gone away; persist anyway.
				if err := session.Close(context.WithoutCancel(r.Context())); err != nil {
					logger.Error("persist link cache", "url", r.URL.RequestURI(), "err", err)
				}
			}()

			view := session.View(r.URL.RequestURI())
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewKey{}, view)))
		})
	}
}

// ViewFromContext returns the View attached by Middleware, or nil.
func ViewFromContext(ctx context.Context) *consume.View {
	v, _ := ctx.Value(viewKey{}).(*consume.View)
	return v
}
