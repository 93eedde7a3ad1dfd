package heuristic

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver answers from a fixed table and records the order of lookups.
type stubResolver struct {
	mu      sync.Mutex
	answers map[string]string
	queried []string
	timeout time.Duration
}

func (s *stubResolver) Resolve(_ context.Context, domain string, timeout time.Duration) (net.IP, bool) {
	s.mu.Lock()
	s.queried = append(s.queried, domain)
	s.timeout = timeout
	s.mu.Unlock()

	if ip, ok := s.answers[domain]; ok {
		return net.ParseIP(ip).To4(), true
	}
	return nil, false
}

func TestProbeAlternateTLD(t *testing.T) {
	stub := &stubResolver{answers: map[string]string{
		"blocked.org": "9.9.9.9",
	}}
	p := NewProber(stub)

	ip, ok := p.Probe(context.Background(), "blocked.ru")

	require.True(t, ok)
	assert.Equal(t, "9.9.9.9", ip.String())
	// com and net come before org in the candidate list.
	assert.Equal(t, []string{"blocked.com", "blocked.net", "blocked.org"}, stub.queried)
	assert.Equal(t, _probeTimeout, stub.timeout)
}

func TestProbeSkipsOriginalTLD(t *testing.T) {
	stub := &stubResolver{answers: map[string]string{}}
	p := NewProber(stub)

	_, ok := p.Probe(context.Background(), "blocked.com")

	assert.False(t, ok)
	assert.NotContains(t, stub.queried, "blocked.com")
	assert.Contains(t, stub.queried, "blocked.net")
}

func TestProbeStrippedSubdomain(t *testing.T) {
	stub := &stubResolver{answers: map[string]string{
		"example.com": "1.2.3.4",
	}}
	p := NewProber(stub)

	ip, ok := p.Probe(context.Background(), "cdn.static.example.com")

	require.True(t, ok)
	assert.Equal(t, "1.2.3.4", ip.String())
	// The stripped form is the very last attempt.
	assert.Equal(t, "example.com", stub.queried[len(stub.queried)-1])
}

func TestProbeNoSubdomainToStrip(t *testing.T) {
	stub := &stubResolver{answers: map[string]string{}}
	p := NewProber(stub)

	_, ok := p.Probe(context.Background(), "example.com")

	assert.False(t, ok)
	// Nine candidate TLDs (original skipped), no stripped form.
	assert.Len(t, stub.queried, len(_commonTLDs)-1)
}

func TestProbeSingleLabel(t *testing.T) {
	stub := &stubResolver{answers: map[string]string{}}
	p := NewProber(stub)

	_, ok := p.Probe(context.Background(), "localhost")

	assert.False(t, ok)
	assert.Empty(t, stub.queried)
}

func TestLastLabelPair(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "a.b.example.com", expected: "example.com"},
		{in: "cdn.example.com", expected: "example.com"},
		{in: "example.com", expected: ""},
		{in: "localhost", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			i := lastLabelPair(tc.in)
			if tc.expected == "" {
				assert.Zero(t, i)
				return
			}
			assert.Equal(t, tc.expected, tc.in[i:])
		})
	}
}
