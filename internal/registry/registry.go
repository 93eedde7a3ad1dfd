// Package registry provides the shared map of domains resolved successfully
// within the current batch. Workers add entries as domains resolve and read
// snapshots of it as fallback evidence for domains that do not.
package registry

import (
	"net"
	"sync"
)

// Entry is one successfully resolved domain.
type Entry struct {
	Domain string
	IP     net.IP
}

// Registry is a grow-only mapping of domain to resolved IPv4 address.
// Entries are only ever added during a batch, never removed or overwritten;
// the registry lives for exactly one batch. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	index   map[string]int // lower-cased domain -> position in entries
	entries []Entry        // insertion order, for bounded scans
}

// New creates an empty registry for a new batch.
func New() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// Add records a resolved domain. The first writer wins: a domain already
// present keeps its original IP and Add reports false.
func (r *Registry) Add(domain string, ip net.IP) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := lower(domain)
	if _, ok := r.index[key]; ok {
		return false
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, Entry{Domain: domain, IP: ip})
	return true
}

// Lookup returns the IP recorded for domain, if any.
func (r *Registry) Lookup(domain string) (net.IP, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[lower(domain)]
	if !ok {
		return nil, false
	}
	return r.entries[i].IP, true
}

// Snapshot returns a point-in-time copy of all entries in insertion order.
// The copy is taken under the lock so a long scan by one worker never holds
// up the others' writes.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded domains.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// lower is an ASCII-only strings.ToLower: domain keys are already
// punycode-folded by the input layer.
func lower(s string) string {
	b := []byte(s)
	changed := false
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 32
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
