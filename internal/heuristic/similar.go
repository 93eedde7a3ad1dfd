// Package heuristic provides the last-resort strategies for domains that
// fail direct resolution: borrowing the IP of a similar already-resolved
// domain, and probing alternate TLD / stripped-subdomain variants.
package heuristic

import (
	"net"
	"strings"

	"github.com/zumuvik/updater-hosts/internal/registry"
)

// Suggestion reasons, highest priority first.
const (
	ReasonDifferentTLD = "different TLD"
	ReasonSimilarName  = "similar name"
	ReasonPartialMatch = "partial match"
)

// Cap on how many registry entries a single scan inspects, so a fallback
// for one domain stays cheap even on very large batches.
const _maxScan = 1000

// Suggestion is a candidate substitute for a failing domain.
type Suggestion struct {
	Domain string
	IP     net.IP
	Reason string
}

// SimilarDomains scans a registry snapshot for plausible substitutes for a
// domain that failed to resolve, returning at most max suggestions ordered
// highest-priority first.
//
// Candidates are classified against the failing domain's base name (all
// labels but the last) and TLD (the last label):
//
//   - same base name with a different TLD — inserted at the front;
//   - base names in a prefix relationship, length difference <= 3;
//   - base names in a substring relationship, length difference <= 5.
//
// Domains without at least two labels produce no suggestions.
func SimilarDomains(domain string, snapshot []registry.Entry, max int) []Suggestion {
	if max <= 0 {
		return nil
	}

	base, tld, ok := splitDomain(strings.ToLower(domain))
	if !ok {
		return nil
	}

	var suggestions []Suggestion
	for i, entry := range snapshot {
		if i >= _maxScan {
			break
		}

		candBase, candTLD, ok := splitDomain(strings.ToLower(entry.Domain))
		if !ok {
			continue
		}

		switch {
		case base == candBase:
			if tld == candTLD {
				continue
			}
			// Highest priority: same name on another TLD.
			suggestions = append([]Suggestion{{
				Domain: entry.Domain,
				IP:     entry.IP,
				Reason: ReasonDifferentTLD,
			}}, suggestions...)
			if len(suggestions) >= max {
				return suggestions[:max]
			}

		case len(suggestions) < max:
			diff := lenDiff(base, candBase)
			if isPrefixPair(base, candBase) && diff <= 3 {
				suggestions = append(suggestions, Suggestion{
					Domain: entry.Domain,
					IP:     entry.IP,
					Reason: ReasonSimilarName,
				})
			} else if diff <= 5 && isSubstringPair(base, candBase) {
				suggestions = append(suggestions, Suggestion{
					Domain: entry.Domain,
					IP:     entry.IP,
					Reason: ReasonPartialMatch,
				})
			}
			if len(suggestions) >= max {
				return suggestions[:max]
			}
		}
	}

	if len(suggestions) > max {
		suggestions = suggestions[:max]
	}
	return suggestions
}

// splitDomain separates a domain into base name and TLD.
// "shop.example.com" -> ("shop.example", "com", true).
func splitDomain(domain string) (base, tld string, ok bool) {
	i := strings.LastIndexByte(domain, '.')
	if i <= 0 || i == len(domain)-1 {
		return "", "", false
	}
	return domain[:i], domain[i+1:], true
}

func isPrefixPair(a, b string) bool {
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

func isSubstringPair(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func lenDiff(a, b string) int {
	d := len(a) - len(b)
	if d < 0 {
		return -d
	}
	return d
}
