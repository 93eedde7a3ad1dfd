package heuristic

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zumuvik/updater-hosts/internal/registry"
)

func snapshotOf(pairs ...string) []registry.Entry {
	// pairs come as domain, ip, domain, ip, ...
	entries := make([]registry.Entry, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		entries = append(entries, registry.Entry{
			Domain: pairs[i],
			IP:     net.ParseIP(pairs[i+1]),
		})
	}
	return entries
}

func TestSimilarDomains(t *testing.T) {
	testCases := []struct {
		name     string
		domain   string
		snapshot []registry.Entry
		max      int
		expected []Suggestion
	}{
		{
			name:     "different TLD is the top suggestion",
			domain:   "shop.net",
			snapshot: snapshotOf("shop.com", "1.2.3.4"),
			max:      3,
			expected: []Suggestion{
				{Domain: "shop.com", IP: net.ParseIP("1.2.3.4"), Reason: ReasonDifferentTLD},
			},
		},
		{
			name:   "different TLD outranks earlier weaker matches",
			domain: "shop.net",
			snapshot: snapshotOf(
				"shops.org", "2.2.2.2", // prefix relationship, diff 1
				"shop.com", "1.1.1.1", // exact base, other TLD
			),
			max: 3,
			expected: []Suggestion{
				{Domain: "shop.com", IP: net.ParseIP("1.1.1.1"), Reason: ReasonDifferentTLD},
				{Domain: "shops.org", IP: net.ParseIP("2.2.2.2"), Reason: ReasonSimilarName},
			},
		},
		{
			name:     "prefix relationship within three chars",
			domain:   "mysite.com",
			snapshot: snapshotOf("mysite24.com", "3.3.3.3"),
			max:      3,
			expected: []Suggestion{
				{Domain: "mysite24.com", IP: net.ParseIP("3.3.3.3"), Reason: ReasonSimilarName},
			},
		},
		{
			name:     "prefix relationship too long",
			domain:   "mysite.com",
			snapshot: snapshotOf("mysite-mirror.com", "3.3.3.3"),
			max:      3,
			expected: nil,
		},
		{
			name:     "substring relationship within five chars",
			domain:   "tracker.org",
			snapshot: snapshotOf("newtracker.org", "4.4.4.4"),
			max:      3,
			expected: []Suggestion{
				{Domain: "newtracker.org", IP: net.ParseIP("4.4.4.4"), Reason: ReasonPartialMatch},
			},
		},
		{
			name:     "unrelated names give nothing",
			domain:   "alpha.com",
			snapshot: snapshotOf("omega.net", "5.5.5.5"),
			max:      3,
			expected: nil,
		},
		{
			name:     "same domain already in snapshot is not suggested",
			domain:   "shop.com",
			snapshot: snapshotOf("shop.com", "1.2.3.4"),
			max:      3,
			expected: nil,
		},
		{
			name:     "single-label domain degrades gracefully",
			domain:   "localhost",
			snapshot: snapshotOf("shop.com", "1.2.3.4"),
			max:      3,
			expected: nil,
		},
		{
			name:   "comparison is case-insensitive",
			domain: "SHOP.net",
			snapshot: snapshotOf(
				"Shop.COM", "1.2.3.4",
			),
			max: 3,
			expected: []Suggestion{
				{Domain: "Shop.COM", IP: net.ParseIP("1.2.3.4"), Reason: ReasonDifferentTLD},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SimilarDomains(tc.domain, tc.snapshot, tc.max)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSimilarDomainsMaxSuggestions(t *testing.T) {
	snapshot := snapshotOf(
		"shop.com", "1.1.1.1",
		"shop.org", "2.2.2.2",
		"shop.io", "3.3.3.3",
		"shop.ru", "4.4.4.4",
	)

	got := SimilarDomains("shop.net", snapshot, 2)

	require.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, ReasonDifferentTLD, s.Reason)
	}
}

func TestSimilarDomainsScanCap(t *testing.T) {
	// The only useful candidate sits beyond the scan cap and must not be found.
	entries := make([]registry.Entry, 0, _maxScan+1)
	for i := 0; i < _maxScan; i++ {
		entries = append(entries, registry.Entry{
			Domain: fmt.Sprintf("filler%d.test", i),
			IP:     net.ParseIP("10.0.0.1"),
		})
	}
	entries = append(entries, registry.Entry{Domain: "shop.com", IP: net.ParseIP("1.2.3.4")})

	got := SimilarDomains("shop.net", entries, 3)

	assert.Empty(t, got)
}

func TestSplitDomain(t *testing.T) {
	testCases := []struct {
		in   string
		base string
		tld  string
		ok   bool
	}{
		{in: "example.com", base: "example", tld: "com", ok: true},
		{in: "a.b.example.com", base: "a.b.example", tld: "com", ok: true},
		{in: "localhost", ok: false},
		{in: ".com", ok: false},
		{in: "example.", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			base, tld, ok := splitDomain(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.base, base)
				assert.Equal(t, tc.tld, tld)
			}
		})
	}
}
