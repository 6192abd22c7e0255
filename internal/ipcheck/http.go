package ipcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hdert/cf-wagdns/pkg/httputil"
)

// DefaultEchoURL answers a plain GET with the caller's IPv4 address.
const DefaultEchoURL = "https://ipv4.icanhazip.com"

// maxBodySize bounds how much of the echo response is read.
const maxBodySize = 1024

// HTTPObserver asks an HTTP echo service for the caller's address.
type HTTPObserver struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// HTTPOption configures an HTTPObserver.
type HTTPOption func(*HTTPObserver)

// WithEchoURL sets the echo service URL.
func WithEchoURL(url string) HTTPOption {
	return func(o *HTTPObserver) {
		if url != "" {
			o.url = url
		}
	}
}

// WithHTTPClient sets the HTTP client used for the request.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(o *HTTPObserver) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger *slog.Logger) HTTPOption {
	return func(o *HTTPObserver) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewHTTPObserver creates an observer for DefaultEchoURL unless overridden.
func NewHTTPObserver(opts ...HTTPOption) *HTTPObserver {
	o := &HTTPObserver{
		url:    DefaultEchoURL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = httputil.NewClient(&httputil.ClientConfig{Logger: o.logger})
	}
	return o
}

// URL returns the echo service URL.
func (o *HTTPObserver) URL() string {
	return o.url
}

// Observe performs a single GET and returns the address in the body. One
// trailing line terminator is stripped; nothing else is trimmed.
func (o *HTTPObserver) Observe(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %w", ErrNetwork, err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s returned %s", ErrNetwork, o.url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: reading response body: %w", ErrNetwork, err)
	}

	text := strings.TrimSuffix(string(body), "\n")
	text = strings.TrimSuffix(text, "\r")

	ip, err := parseIPv4(text)
	if err != nil {
		return "", err
	}

	o.logger.Debug("observed public address",
		slog.String("source", SourceHTTP),
		slog.String("url", o.url),
		slog.String("ip", ip),
	)

	return ip, nil
}
