// Package socket provides a linkpub.Transport that speaks HTTP/1.0 over a
// plain TCP connection, building the request and parsing the response by
// hand. It is the fallback when no net/http based strategy is allowed.
package socket

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/linkpub"
	"golang.org/x/net/http/httpguts"
)

// DefaultPort is used when the host has no explicit port.
const DefaultPort = "80"

// Ensure Transport implements linkpub.Transport at compile time.
var _ linkpub.Transport = (*Transport)(nil)

// statusLine matches "HTTP/x.y NNN" optionally followed by a reason phrase.
var statusLine = regexp.MustCompile(`^HTTP/(\d)\.(\d) (\d{3})(?: |$)`)

// Transport fetches over a raw TCP socket.
type Transport struct {
	dialer    *net.Dialer
	userAgent string
}

// Option configures a Transport.
type Option func(*Transport)

// WithTimeout sets the connect timeout.
// Defaults to linkpub.DefaultConnectTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.dialer.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
// Defaults to linkpub.DefaultUserAgent if not specified.
func WithUserAgent(ua string) Option {
	return func(t *Transport) {
		t.userAgent = ua
	}
}

// NewTransport creates a new raw socket Transport.
func NewTransport(opts ...Option) *Transport {
	t := &Transport{
		dialer:    &net.Dialer{Timeout: linkpub.DefaultConnectTimeout},
		userAgent: linkpub.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fetch performs one conditional GET.
func (t *Transport) Fetch(ctx context.Context, host, path, validator string) linkpub.Outcome {
	req, err := t.buildRequest(host, path, validator)
	if err != nil {
		return linkpub.Failure(linkpub.ReasonTransportInit)
	}

	conn, err := t.dialer.DialContext(ctx, "tcp", hostPort(host))
	if err != nil {
		return linkpub.Failure(linkpub.ReasonTransportInit)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := io.WriteString(conn, req); err != nil {
		return linkpub.Failure(linkpub.ReasonNoData)
	}

	return readResponse(bufio.NewReader(conn))
}

func (t *Transport) buildRequest(host, path, validator string) (string, error) {
	if !strings.HasPrefix(path, "/") || strings.ContainsAny(path, " \r\n") {
		return "", fmt.Errorf("invalid request path %q", path)
	}
	for _, v := range []string{host, t.userAgent, validator} {
		if !httpguts.ValidHeaderFieldValue(v) {
			return "", fmt.Errorf("invalid header value %q", v)
		}
	}

	var b strings.Builder
	b.WriteString("GET " + path + " HTTP/1.0\r\n")
	b.WriteString("Host: " + host + "\r\n")
	b.WriteString("User-Agent: " + t.userAgent + "\r\n")
	if validator != "" {
		b.WriteString("If-Modified-Since: " + validator + "\r\n")
	}
	b.WriteString("\r\n")
	return b.String(), nil
}

// readResponse parses an HTTP/1.x response framed the way net/http frames
// it: chunked for HTTP/1.1 Transfer-Encoding, exact for Content-Length and
// close-delimited otherwise. Anything that goes wrong before the end of the
// headers means there is no usable status line; a failure while reading the
// body means no data.
func readResponse(r *bufio.Reader) linkpub.Outcome {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return linkpub.Failure(linkpub.ReasonNoStatusLine)
	}
	m := statusLine.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
	if m == nil {
		return linkpub.Failure(linkpub.ReasonNoStatusLine)
	}
	http11 := m[1] > "1" || m[2] >= "1"
	code, _ := strconv.Atoi(m[3])

	var (
		lastModified  string
		contentLength int64 = -1
		chunked       bool
	)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return linkpub.Failure(linkpub.ReasonNoStatusLine)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !httpguts.ValidHeaderFieldName(name) {
			return linkpub.Failure(linkpub.ReasonNoStatusLine)
		}
		value = strings.TrimSpace(value)

		switch {
		case strings.EqualFold(name, "Last-Modified"):
			if lastModified == "" {
				lastModified = value
			}
		case strings.EqualFold(name, "Content-Length"):
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n < 0 || (contentLength >= 0 && n != contentLength) {
				return linkpub.Failure(linkpub.ReasonNoStatusLine)
			}
			contentLength = n
		case strings.EqualFold(name, "Transfer-Encoding") && http11:
			if !strings.EqualFold(value, "chunked") {
				return linkpub.Failure(linkpub.ReasonNoStatusLine)
			}
			chunked = true
		}
	}

	body, err := readBody(r, code, contentLength, chunked)
	if err != nil {
		return linkpub.Failure(linkpub.ReasonNoData)
	}
	return linkpub.ClassifyStatus(code, body, lastModified)
}

func readBody(r *bufio.Reader, code int, contentLength int64, chunked bool) ([]byte, error) {
	switch {
	case code == http.StatusNotModified || code == http.StatusNoContent:
		return nil, nil
	case chunked:
		return io.ReadAll(httputil.NewChunkedReader(r))
	case contentLength >= 0:
		body, err := io.ReadAll(io.LimitReader(r, contentLength))
		if err != nil {
			return nil, err
		}
		if int64(len(body)) < contentLength {
			return nil, io.ErrUnexpectedEOF
		}
		return body, nil
	default:
		return io.ReadAll(r)
	}
}

func hostPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, DefaultPort)
}
