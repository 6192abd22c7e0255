// Package ipcheck discovers the public IPv4 address this host is seen from.
package ipcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"time"
)

// Sentinel errors for address observation.
var (
	// ErrNetwork is returned when the observation service could not be
	// reached or answered with a failure.
	ErrNetwork = errors.New("ip observation network error")

	// ErrInvalidAddress is returned when the service answered with something
	// that is not an IPv4 address.
	ErrInvalidAddress = errors.New("invalid ipv4 address")
)

// Observer reports the caller's current public IPv4 address in dotted-quad
// form.
type Observer interface {
	Observe(ctx context.Context) (string, error)
}

// Source names accepted by New.
const (
	SourceHTTP = "http"
	SourceDNS  = "dns"
)

// Options selects and configures an Observer.
type Options struct {
	Source    string
	EchoURL   string
	DNSName   string
	DNSServer string
	Timeout   time.Duration

	// HTTPClient is used by the http source. Nil builds a default client.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New returns the observer named by opts.Source. An empty source means http.
func New(opts Options) (Observer, error) {
	switch opts.Source {
	case "", SourceHTTP:
		return NewHTTPObserver(
			WithEchoURL(opts.EchoURL),
			WithHTTPClient(opts.HTTPClient),
			WithHTTPLogger(opts.Logger),
		), nil
	case SourceDNS:
		return NewDNSObserver(
			WithQueryName(opts.DNSName),
			WithServer(opts.DNSServer),
			WithDNSTimeout(opts.Timeout),
			WithDNSLogger(opts.Logger),
		), nil
	default:
		return nil, fmt.Errorf("unknown ip source %q (expected %s or %s)", opts.Source, SourceHTTP, SourceDNS)
	}
}

// parseIPv4 validates s as a textual IPv4 address.
func parseIPv4(s string) (string, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	if !addr.Is4() {
		return "", fmt.Errorf("%w: %q is not IPv4", ErrInvalidAddress, s)
	}
	return addr.String(), nil
}
