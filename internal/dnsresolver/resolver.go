// Package dnsresolver resolves domain names to IPv4 addresses through a
// layered pipeline of independent backends. Each backend is tried in order
// and any backend failure is swallowed; a domain that exhausts the pipeline
// simply has no answer.
package dnsresolver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/zumuvik/updater-hosts/internal/log"
)

var (
	// ErrNoRecords is returned internally when a DNS response carries no
	// usable A records.
	ErrNoRecords = fmt.Errorf("no records found")
	// ErrEmptyMsg is returned internally when the DNS response is empty.
	ErrEmptyMsg = fmt.Errorf("empty message")
)

// Public recursive resolvers tried, pair by pair, when the system resolver
// gives no answer. First Google, then Cloudflare.
var _alternateServers = [][]string{
	{"8.8.8.8:53", "8.8.4.4:53"},
	{"1.1.1.1:53", "1.0.0.1:53"},
}

// Retry step 4 of the pipeline only applies when the caller's timeout is
// long enough that a 1.5x retry stays reasonable, so it is skipped for
// short-timeout bulk batches.
const _retryThreshold = 2 * time.Second

var _ Resolver = (*Client)(nil)

// Resolver is the per-domain resolution contract. Implementations return
// the first IPv4 address found along with ok=true, or ok=false when the
// domain cannot be resolved. Implementations never return errors: every
// lookup failure is a valid "no answer".
type Resolver interface {
	Resolve(ctx context.Context, domain string, timeout time.Duration) (net.IP, bool)
}

// HostLookuper is the surface of *net.Resolver the backends use.
type HostLookuper interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
}

// Exchanger defines the interface for DNS message exchange against a
// specific server, satisfied by *dns.Client.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, a string) (r *dns.Msg, rtt time.Duration, err error)
}

// Client implements Resolver over the system resolver, a pure-Go resolver
// and, optionally, a fixed set of public recursive resolvers.
type Client struct {
	// System is the platform's default resolution path.
	System HostLookuper
	// Fallback is a second, independent code path (the pure-Go resolver)
	// which can succeed where the default path fails.
	Fallback HostLookuper
	// Exchanger performs direct queries against alternate DNS servers.
	// Nil disables the alternate-DNS backends.
	Exchanger Exchanger
	// AltServers holds the alternate server groups tried in order.
	AltServers [][]string
}

// Opt is a function option for configuring the Client.
type Opt func(c *Client)

// New creates a resolution pipeline over the system resolver only.
// Alternate DNS servers are enabled with WithAlternateDNS.
func New(opts ...Opt) *Client {
	c := &Client{
		System:   net.DefaultResolver,
		Fallback: &net.Resolver{PreferGo: true},
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// WithAlternateDNS enables the public-recursive-resolver backends.
// The capability is fixed for the lifetime of the Client: selection happens
// once at batch start, not per lookup.
func WithAlternateDNS() Opt {
	return func(c *Client) {
		c.Exchanger = &dns.Client{}
		c.AltServers = _alternateServers
	}
}

// WithAlternateServers enables the alternate-DNS backends against custom
// server groups. Each group is tried as a unit, servers within it in order.
func WithAlternateServers(groups [][]string) Opt {
	return func(c *Client) {
		c.Exchanger = &dns.Client{}
		c.AltServers = groups
	}
}

// Resolve runs the backend pipeline for a single domain:
//
//  1. system resolver, IPv4 only, with the given timeout
//  2. pure-Go resolver, same timeout
//  3. alternate DNS server groups, if enabled, each with the same timeout
//  4. system resolver again at 1.5x timeout, only when timeout > 2s
//
// The first backend that yields an IPv4 address wins. Resolve holds no
// shared state and is safe for concurrent use.
func (c *Client) Resolve(ctx context.Context, domain string, timeout time.Duration) (net.IP, bool) {
	if domain == "" {
		return nil, false
	}

	if ip := net.ParseIP(domain); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, true
		}
		return nil, false
	}

	ip, err := c.lookupHost(ctx, c.System, domain, timeout)
	if err == nil {
		return ip, true
	}
	log.Debugf("dnsresolver: system lookup %q: %v", domain, err)

	ip, err = c.lookupHost(ctx, c.Fallback, domain, timeout)
	if err == nil {
		return ip, true
	}
	log.Debugf("dnsresolver: fallback lookup %q: %v", domain, err)

	if c.Exchanger != nil {
		for _, group := range c.AltServers {
			ip, err := c.lookupAlternate(ctx, domain, group, timeout)
			if err == nil {
				return ip, true
			}
			log.Debugf("dnsresolver: alternate lookup %q via %v: %v", domain, group, err)
		}
	}

	if timeout > _retryThreshold {
		ip, err = c.lookupHost(ctx, c.System, domain, timeout*3/2)
		if err == nil {
			return ip, true
		}
		log.Debugf("dnsresolver: slow retry %q: %v", domain, err)
	}

	return nil, false
}

// lookupHost resolves the first IPv4 address for domain through one of the
// stdlib resolver paths.
func (c *Client) lookupHost(ctx context.Context, r HostLookuper, domain string, timeout time.Duration) (net.IP, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ips, err := r.LookupIP(ctx, "ip4", domain)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, ErrNoRecords
}

// lookupAlternate queries an A record against each server of a group in
// turn, returning the first answer.
func (c *Client) lookupAlternate(ctx context.Context, domain string, group []string, timeout time.Duration) (net.IP, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for _, server := range group {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Fresh request each attempt: ExchangeContext mutates *dns.Msg.
		req := &dns.Msg{}
		req.SetQuestion(dns.Fqdn(domain), dns.TypeA)

		resp, _, err := c.Exchanger.ExchangeContext(ctx, req, server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp == nil {
			lastErr = ErrEmptyMsg
			continue
		}

		ip, err := parseA(resp)
		if err != nil {
			lastErr = err
			continue
		}
		return ip, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("dns lookup failed for %q", domain)
	}
	return nil, lastErr
}

// parseA extracts the first IPv4 answer from a DNS response.
func parseA(resp *dns.Msg) (net.IP, error) {
	if resp == nil {
		return nil, ErrEmptyMsg
	}

	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			if v4 := a.A.To4(); v4 != nil {
				return v4, nil
			}
		}
	}

	return nil, ErrNoRecords
}
