// Package httputil provides the shared HTTP client used for the Cloudflare
// API and the public IP echo service.
package httputil

import (
	"log/slog"
	"net/http"
	"time"
)

// Default HTTP client configuration values.
const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is used when no custom user agent is specified.
	DefaultUserAgent = "cf-wagdns/1.0"
)

// ResponseObserver is called once per round trip with the request, the
// response (nil on transport failure) and the transport error.
type ResponseObserver func(req *http.Request, resp *http.Response, err error)

// ClientConfig contains configuration for creating an HTTP client.
type ClientConfig struct {
	// Timeout bounds each request. Defaults to 30 seconds.
	Timeout time.Duration

	// UserAgent is the User-Agent header to set on requests.
	// Defaults to "cf-wagdns/1.0" if not specified.
	UserAgent string

	// Logger enables debug logging for HTTP requests.
	// If nil, no debug logging is performed.
	Logger *slog.Logger

	// Observe, if set, sees every round trip. Used for request metrics.
	Observe ResponseObserver

	// Base is the underlying transport. Defaults to http.DefaultTransport.
	Base http.RoundTripper
}

// userAgentTransport wraps an http.RoundTripper to add User-Agent header,
// log requests at debug level and report each round trip to an observer.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
	logger    *slog.Logger
	observe   ResponseObserver
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" && t.userAgent != "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}

	if t.logger != nil {
		t.logger.Debug("HTTP request",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
		)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)

	if t.logger != nil {
		switch {
		case err != nil:
			t.logger.Debug("HTTP request failed",
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.String("error", err.Error()),
			)
		case resp != nil:
			t.logger.Debug("HTTP response",
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.Int("status", resp.StatusCode),
				slog.Duration("elapsed", time.Since(start)),
			)
		}
	}

	if t.observe != nil {
		t.observe(req, resp, err)
	}

	return resp, err
}

// NewClient creates an HTTP client with the specified configuration.
// If cfg is nil, defaults are used.
func NewClient(cfg *ClientConfig) *http.Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &userAgentTransport{
			base:      base,
			userAgent: userAgent,
			logger:    cfg.Logger,
			observe:   cfg.Observe,
		},
	}
}
