package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public GitHub REST API root.
const DefaultBaseURL = "https://api.github.com/"

// Response is the raw outcome of a GET request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends a single GET request. Implementations return an error only
// when no HTTP response was obtained; every status code is a valid Response.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
}

// TransportConfig configures the production HTTP transport.
type TransportConfig struct {
	BaseURL           string
	Token             string
	UserAgent         string
	RequestTimeout    time.Duration
	RequestsPerSecond float64 // <= 0 disables client-side pacing.
	CacheDir          string  // Empty disables conditional request caching.
}

// Compile-time interface satisfaction check.
var _ Transport = (*HTTPTransport)(nil)

// HTTPTransport implements Transport over net/http.
type HTTPTransport struct {
	client    *http.Client
	baseURL   *url.URL
	userAgent string
	limiter   *rate.Limiter
}

// NewHTTPTransport creates a transport with the following stack:
//  1. oauth2 (static bearer token, omitted when no token is configured)
//  2. go-github-ratelimit secondary limiter (sleeps on abuse-limit 403/429)
//  3. httpcache on disk (ETag-based conditional requests, omitted when
//     CacheDir is empty)
//
// Primary rate limits are not handled here: the 403 with
// X-RateLimit-Remaining: 0 reaches the Executor, which waits for the reset.
func NewHTTPTransport(cfg TransportConfig) (*HTTPTransport, error) {
	var base http.RoundTripper = http.DefaultTransport
	if cfg.CacheDir != "" {
		base = httpcache.NewTransport(diskcache.New(cfg.CacheDir))
	}

	var roundTripper http.RoundTripper = github_ratelimit.NewSecondaryLimiter(base)
	if cfg.Token != "" {
		roundTripper = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   roundTripper,
		}
	}

	httpClient := &http.Client{
		Transport: roundTripper,
		Timeout:   cfg.RequestTimeout,
	}

	t, err := NewHTTPTransportWithClient(httpClient, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.UserAgent != "" {
		t.userAgent = cfg.UserAgent
	}
	if cfg.RequestsPerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return t, nil
}

// NewHTTPTransportWithClient creates a transport with a custom http.Client and
// base URL. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewHTTPTransportWithClient(httpClient *http.Client, baseURL string) (*HTTPTransport, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	return &HTTPTransport{
		client:    httpClient,
		baseURL:   u,
		userAgent: "prstudy",
	}, nil
}

// Get issues a GET request for path (relative to the base URL) and reads the
// full body.
func (t *HTTPTransport) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u, err := t.baseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", path, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
