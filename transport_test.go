package linkpub_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/linkpub"
	lphttp "github.com/fwojciec/linkpub/http"
	"github.com/fwojciec/linkpub/socket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Interchangeable Transports
// Every strategy must classify the same server behaviour identically.

func strategies() map[linkpub.Strategy]linkpub.Transport {
	opts := []lphttp.Option{lphttp.WithTimeout(2 * time.Second), lphttp.WithUserAgent("conformance")}
	return map[linkpub.Strategy]linkpub.Transport{
		linkpub.StrategyFetchCall:  lphttp.NewCall(opts...),
		linkpub.StrategyFullClient: lphttp.NewClient(opts...),
		linkpub.StrategyRawSocket:  socket.NewTransport(socket.WithTimeout(2*time.Second), socket.WithUserAgent("conformance")),
	}
}

// rawServer answers every connection with response after reading the
// request headers, then closes the connection.
func rawServer(t *testing.T, response string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				r := bufio.NewReader(c)
				for {
					line, err := r.ReadString('\n')
					if err != nil || line == "\r\n" {
						break
					}
				}
				_, _ = io.WriteString(c, response)
			}(conn)
		}
	}()

	return ln.Addr().String()
}

// silentServer accepts connections and never answers.
func silentServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	return ln.Addr().String()
}

// closedAddr returns an address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestTransports_ClassifyIdentically(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		response string
		want     linkpub.Outcome
	}{
		{
			name:     "200 with Last-Modified",
			response: "HTTP/1.1 200 OK\r\nLast-Modified: Wed, 21 Oct 2015 07:28:00 GMT\r\nContent-Length: 2\r\n\r\n{}",
			want:     linkpub.Updated([]byte("{}"), "Wed, 21 Oct 2015 07:28:00 GMT"),
		},
		{
			name:     "200 without Last-Modified",
			response: "HTTP/1.0 200 OK\r\nContent-Length: 4\r\n\r\nnull",
			want:     linkpub.Updated([]byte("null"), ""),
		},
		{
			name:     "304",
			response: "HTTP/1.1 304 Not Modified\r\n\r\n",
			want:     linkpub.NotModified(),
		},
		{
			name:     "500",
			response: "HTTP/1.1 500 Internal Server Error\r\nContent-Length: 0\r\n\r\n",
			want:     linkpub.Failure("unexpected-status:500"),
		},
		{
			name:     "redirect is not followed",
			response: "HTTP/1.1 302 Found\r\nLocation: /elsewhere\r\nContent-Length: 0\r\n\r\n",
			want:     linkpub.Failure("unexpected-status:302"),
		},
		{
			name:     "body shorter than Content-Length",
			response: "HTTP/1.0 200 OK\r\nContent-Length: 100\r\n\r\n{}",
			want:     linkpub.Failure(linkpub.ReasonNoData),
		},
		{
			name:     "bytes past Content-Length are ignored",
			response: "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\n{}trailing",
			want:     linkpub.Updated([]byte("{}"), ""),
		},
		{
			name:     "chunked body",
			response: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n1\r\n{\r\n1\r\n}\r\n0\r\n\r\n",
			want:     linkpub.Updated([]byte("{}"), ""),
		},
		{
			name:     "truncated chunked body",
			response: "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n10\r\n{}",
			want:     linkpub.Failure(linkpub.ReasonNoData),
		},
		{
			name:     "status line without a reason phrase",
			response: "HTTP/1.1 200\r\nContent-Length: 2\r\n\r\n{}",
			want:     linkpub.Updated([]byte("{}"), ""),
		},
		{
			name:     "four digit status code",
			response: "HTTP/1.1 2000 OK\r\nContent-Length: 2\r\n\r\n{}",
			want:     linkpub.Failure(linkpub.ReasonNoStatusLine),
		},
		{
			name:     "header line without a colon",
			response: "HTTP/1.1 200 OK\r\nGarbage\r\nContent-Length: 2\r\n\r\n{}",
			want:     linkpub.Failure(linkpub.ReasonNoStatusLine),
		},
		{
			name:     "invalid Content-Length",
			response: "HTTP/1.1 200 OK\r\nContent-Length: two\r\n\r\n{}",
			want:     linkpub.Failure(linkpub.ReasonNoStatusLine),
		},
		{
			name:     "conflicting Content-Length headers",
			response: "HTTP/1.1 200 OK\r\nContent-Length: 2\r\nContent-Length: 3\r\n\r\n{}x",
			want:     linkpub.Failure(linkpub.ReasonNoStatusLine),
		},
		{
			name:     "garbage instead of a status line",
			response: "HELLO THERE\r\n\r\n",
			want:     linkpub.Failure(linkpub.ReasonNoStatusLine),
		},
		{
			name:     "connection closed without a response",
			response: "",
			want:     linkpub.Failure(linkpub.ReasonNoStatusLine),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			host := rawServer(t, tc.response)

			for strategy, transport := range strategies() {
				got := transport.Fetch(context.Background(), host, "/", "")
				assert.Equal(t, tc.want, got, strategy)
			}
		})
	}

	t.Run("refused connection", func(t *testing.T) {
		t.Parallel()

		host := closedAddr(t)

		for strategy, transport := range strategies() {
			got := transport.Fetch(context.Background(), host, "/", "")
			assert.Equal(t, linkpub.Failure(linkpub.ReasonTransportInit), got, strategy)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		host := rawServer(t, "HTTP/1.1 304 Not Modified\r\n\r\n")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		for strategy, transport := range strategies() {
			got := transport.Fetch(ctx, host, "/", "")
			assert.Equal(t, linkpub.Failure(linkpub.ReasonTransportInit), got, strategy)
		}
	})

	t.Run("server that never answers", func(t *testing.T) {
		t.Parallel()

		host := silentServer(t)

		for strategy, transport := range strategies() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			got := transport.Fetch(ctx, host, "/", "")
			cancel()
			assert.Equal(t, linkpub.Failure(linkpub.ReasonNoStatusLine), got, strategy)
		}
	})
}

func TestTransports_SendSameRequest(t *testing.T) {
	t.Parallel()

	type seen struct {
		method, uri, userAgent, ifModifiedSince string
	}
	var mu sync.Mutex
	var requests []seen

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, seen{r.Method, r.RequestURI, r.UserAgent(), r.Header.Get("If-Modified-Since")})
		mu.Unlock()
		if r.Header.Get("If-Modified-Since") == "V1" {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", "V1")
		_, _ = w.Write([]byte(`{"/index.html":[{"url":"http://a","title":"A"}]}`))
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")

	for strategy, transport := range strategies() {
		first := transport.Fetch(context.Background(), host, "/?guid=abc", "")
		second := transport.Fetch(context.Background(), host, "/?guid=abc", "V1")

		assert.Equal(t, linkpub.Updated([]byte(`{"/index.html":[{"url":"http://a","title":"A"}]}`), "V1"), first, strategy)
		assert.Equal(t, linkpub.NotModified(), second, strategy)
	}

	require.Len(t, requests, 6)
	for i, r := range requests {
		assert.Equal(t, http.MethodGet, r.method)
		assert.Equal(t, "/?guid=abc", r.uri)
		assert.Equal(t, "conformance", r.userAgent)
		if i%2 == 0 {
			assert.Empty(t, r.ifModifiedSince)
		} else {
			assert.Equal(t, "V1", r.ifModifiedSince)
		}
	}
}
