package heuristic

import (
	"context"
	"net"
	"time"

	"github.com/zumuvik/updater-hosts/internal/dnsresolver"
	"github.com/zumuvik/updater-hosts/internal/log"
)

// TLDs tried, in order, when probing variants of a failing domain.
var _commonTLDs = []string{"com", "net", "org", "ru", "io", "co", "info", "top", "xyz", "site"}

// Variant probes use a short fixed timeout: they are speculative and there
// may be many of them per failing domain.
const _probeTimeout = 1 * time.Second

// Prober tries alternate-TLD and stripped-subdomain variants of a domain as
// the final fallback after direct resolution and the similarity heuristic
// have both failed.
type Prober struct {
	Resolver dnsresolver.Resolver
}

// NewProber creates a Prober over the given resolution pipeline.
func NewProber(r dnsresolver.Resolver) *Prober {
	return &Prober{Resolver: r}
}

// Probe resolves variants of domain and returns the first answer found:
// the base name under each candidate TLD (the original TLD is skipped),
// then, for domains with a subdomain, just the last two labels. Individual
// probe failures are swallowed.
func (p *Prober) Probe(ctx context.Context, domain string) (net.IP, bool) {
	base, tld, ok := splitDomain(domain)
	if !ok {
		return nil, false
	}

	for _, candidate := range _commonTLDs {
		if candidate == tld {
			continue
		}
		variant := base + "." + candidate
		if ip, ok := p.Resolver.Resolve(ctx, variant, _probeTimeout); ok {
			log.Debugf("heuristic: %q resolved via variant %q", domain, variant)
			return ip, true
		}
	}

	// With a subdomain present, try the registrable part alone.
	if i := lastLabelPair(domain); i > 0 {
		stripped := domain[i:]
		if ip, ok := p.Resolver.Resolve(ctx, stripped, _probeTimeout); ok {
			log.Debugf("heuristic: %q resolved via stripped form %q", domain, stripped)
			return ip, true
		}
	}

	return nil, false
}

// lastLabelPair returns the index of the final two labels of a domain with
// more than two labels, or 0 when there is no subdomain to strip.
// "a.b.example.com" -> index of "example.com".
func lastLabelPair(domain string) int {
	last := -1
	prev := -1
	for i := len(domain) - 1; i >= 0; i-- {
		if domain[i] != '.' {
			continue
		}
		if last == -1 {
			last = i
			continue
		}
		prev = i
		break
	}
	if prev == -1 {
		return 0
	}
	return prev + 1
}
