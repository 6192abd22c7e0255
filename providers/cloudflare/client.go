// Package cloudflare talks to the Cloudflare v4 REST API: DNS records in a
// zone and Zero Trust Access groups in an account.
package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/hdert/cf-wagdns/pkg/httputil"
)

// DefaultAPIEndpoint is the base URL for Cloudflare API v4.
const DefaultAPIEndpoint = "https://api.cloudflare.com/client/v4"

// Client is a Cloudflare API client bound to a single API token.
type Client struct {
	apiEndpoint string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client whose transport requests are sent
// through. The bearer token is layered on top of its transport.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAPIEndpoint sets a custom API endpoint (useful for testing).
func WithAPIEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.apiEndpoint = endpoint
		}
	}
}

// NewClient creates a new Cloudflare API client that authenticates every
// request with token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		apiEndpoint: DefaultAPIEndpoint,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = httputil.NewClient(&httputil.ClientConfig{Logger: c.logger})
	}
	c.httpClient = withBearerToken(c.httpClient, token)

	return c
}

// withBearerToken returns a copy of base that sets
// "Authorization: Bearer <token>" on every request.
func withBearerToken(base *http.Client, token string) *http.Client {
	authorized := *base
	authorized.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token,
			TokenType:   "Bearer",
		}),
		Base: base.Transport,
	}
	return &authorized
}

// Send performs one API call and returns the decoded envelope with its
// result normalized to a non-empty list of records. body, if non-nil, is
// encoded as the JSON request payload.
//
// No retries are attempted; any failure is returned as a *RequestError.
func (c *Client) Send(ctx context.Context, method, path string, body any) (*Response, error) {
	reqURL := c.apiEndpoint + path
	fail := func(kind error, status int, raw []byte, cause error) error {
		return &RequestError{
			Method: method,
			URL:    reqURL,
			Status: status,
			Body:   raw,
			Kind:   kind,
			Err:    cause,
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fail(ErrParse, 0, nil, fmt.Errorf("encoding request body: %w", err))
		}
		reader = bytes.NewReader(payload)
		c.logger.Debug("request payload",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("body", string(payload)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fail(ErrNetwork, 0, nil, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(ErrNetwork, 0, nil, fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(ErrNetwork, resp.StatusCode, nil, fmt.Errorf("reading response body: %w", err))
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	decoded, err := decodeResponse(respBody)
	if err != nil {
		// A non-JSON error page (proxy, outage) is a transport problem, not a
		// malformed API answer.
		if !ok {
			return nil, fail(ErrNetwork, resp.StatusCode, respBody, fmt.Errorf("unexpected status code %d", resp.StatusCode))
		}
		return nil, fail(ErrParse, resp.StatusCode, respBody, fmt.Errorf("parsing response JSON: %w", err))
	}

	if !ok || !decoded.Success {
		reqErr := &RequestError{
			Method:    method,
			URL:       reqURL,
			Status:    resp.StatusCode,
			Body:      respBody,
			APIErrors: decoded.Errors,
			Kind:      ErrUnsuccessful,
		}
		return nil, reqErr
	}

	if len(decoded.Records) == 0 {
		return nil, fail(ErrEmptyResponse, resp.StatusCode, respBody, nil)
	}

	c.logger.Debug("API response",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("records", len(decoded.Records)),
	)

	return decoded, nil
}

// Get performs a GET request against path.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Send(ctx, http.MethodGet, path, nil)
}

// Put performs a PUT request against path with body as JSON.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Send(ctx, http.MethodPut, path, body)
}
