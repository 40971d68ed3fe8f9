package engine

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html/charset"
)

// HTTPEngine fetches pages over plain net/http with a Chrome-like TLS
// fingerprint. It performs one request per Fetch and never retries.
type HTTPEngine struct {
	client         *http.Client
	defaultTimeout time.Duration
	maxBody        int64
	userAgent      string
	rootCAs        *x509.CertPool
}

// chromeH1Spec returns a fresh Chrome-like ClientHello with ALPN limited to
// http/1.1. ApplyPreset mutates the spec it is given, so every connection
// needs its own.
func chromeH1Spec() (*tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return nil, err
	}
	// net/http cannot speak h2 over a utls connection, so only offer http/1.1.
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			break
		}
	}
	return &spec, nil
}

// Option customises an HTTPEngine.
type Option func(*HTTPEngine)

// WithTimeout sets the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *HTTPEngine) {
		if d > 0 {
			e.defaultTimeout = d
		}
	}
}

// WithMaxBody caps how many bytes of a response body are read.
func WithMaxBody(n int64) Option {
	return func(e *HTTPEngine) {
		if n > 0 {
			e.maxBody = n
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(e *HTTPEngine) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying client. Used by tests.
func WithHTTPClient(c *http.Client) Option {
	return func(e *HTTPEngine) {
		if c != nil {
			e.client = c
		}
	}
}

// WithRootCAs sets the pool used to verify server certificates instead of
// the system roots.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(e *HTTPEngine) { e.rootCAs = pool }
}

// NewHTTPEngine creates an HTTPEngine. Defaults: 20s timeout, 10 MiB body cap.
func NewHTTPEngine(opts ...Option) *HTTPEngine {
	e := &HTTPEngine{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		defaultTimeout: 20 * time.Second,
		maxBody:        10 << 20,
		userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client.Transport == nil {
		e.client.Transport = &http.Transport{
			Proxy:          http.ProxyFromEnvironment,
			DialTLSContext: e.dialTLSChrome,
		}
	}
	return e
}

func (e *HTTPEngine) dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	cfg := &tls.Config{ServerName: host, RootCAs: e.rootCAs}

	var tlsConn *tls.UConn
	if spec, err := chromeH1Spec(); err == nil {
		tlsConn = tls.UClient(conn, cfg, tls.HelloCustom)
		if err := tlsConn.ApplyPreset(spec); err != nil {
			conn.Close()
			return nil, fmt.Errorf("http_engine: apply tls spec: %w", err)
		}
	} else {
		tlsConn = tls.UClient(conn, cfg, tls.HelloChrome_Auto)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// Fetch performs a GET, or a urlencoded POST when req.Form is set.
func (e *HTTPEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := http.MethodGet
	var body io.Reader
	if len(req.Form) > 0 {
		method = http.MethodPost
		body = strings.NewReader(EncodeForm(req.Form))
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("http_engine: build request: %w", err)
	}
	if method == http.MethodPost {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	httpReq.Header.Set("User-Agent", e.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http_engine: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http_engine: HTTP %d %s for %s", resp.StatusCode, http.StatusText(resp.StatusCode), req.URL)
	}

	// Decode to UTF-8 using the Content-Type charset, a BOM or a <meta> tag.
	decoded, err := charset.NewReader(io.LimitReader(resp.Body, e.maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("http_engine: decode body: %w", err)
	}
	raw, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("http_engine: read body: %w", err)
	}

	return &FetchResult{
		Body:       string(raw),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}
