package ipcheck

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/miekg/dns"
)

// Defaults for the OpenDNS "myip" lookup.
const (
	DefaultQueryName  = "myip.opendns.com"
	DefaultServer     = "resolver1.opendns.com:53"
	DefaultDNSTimeout = 5 * time.Second
)

// DNSObserver asks a resolver that answers a well-known name with the
// querying address.
type DNSObserver struct {
	name      string
	server    string
	dnsClient *dns.Client
	logger    *slog.Logger
}

// DNSOption configures a DNSObserver.
type DNSOption func(*DNSObserver)

// WithQueryName sets the name whose A record is the caller's address.
func WithQueryName(name string) DNSOption {
	return func(o *DNSObserver) {
		if name != "" {
			o.name = name
		}
	}
}

// WithServer sets the resolver address (host:port).
func WithServer(server string) DNSOption {
	return func(o *DNSObserver) {
		if server != "" {
			o.server = server
		}
	}
}

// WithDNSTimeout sets the query timeout.
func WithDNSTimeout(timeout time.Duration) DNSOption {
	return func(o *DNSObserver) {
		if timeout > 0 {
			o.dnsClient.Timeout = timeout
		}
	}
}

// WithDNSLogger sets the logger.
func WithDNSLogger(logger *slog.Logger) DNSOption {
	return func(o *DNSObserver) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDNSObserver creates an observer querying DefaultQueryName at
// DefaultServer over UDP unless overridden.
func NewDNSObserver(opts ...DNSOption) *DNSObserver {
	o := &DNSObserver{
		name:   DefaultQueryName,
		server: DefaultServer,
		dnsClient: &dns.Client{
			Net:     "udp",
			Timeout: DefaultDNSTimeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Observe sends one A query and returns the first A answer.
func (o *DNSObserver) Observe(ctx context.Context) (string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(o.name), dns.TypeA)
	msg.RecursionDesired = false

	resp, rtt, err := o.dnsClient.ExchangeContext(ctx, msg, o.server)
	if err != nil {
		return "", fmt.Errorf("%w: querying %s: %w", ErrNetwork, o.server, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no response from %s", ErrNetwork, o.server)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("%w: %s returned %s", ErrNetwork, o.server, dns.RcodeToString[resp.Rcode])
	}

	for _, rr := range resp.Answer {
		a, ok := rr.(*dns.A)
		if !ok {
			continue
		}

		ip, err := parseIPv4(a.A.String())
		if err != nil {
			return "", err
		}

		o.logger.Debug("observed public address",
			slog.String("source", SourceDNS),
			slog.String("server", o.server),
			slog.String("ip", ip),
			slog.Duration("rtt", rtt),
		)
		return ip, nil
	}

	return "", fmt.Errorf("%w: no A record for %s in answer from %s", ErrInvalidAddress, o.name, o.server)
}
