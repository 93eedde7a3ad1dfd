// Package dnsresolver provides layered DNS resolution of domain names to
// IPv4 addresses.
//
// The package implements the per-domain fallback pipeline used by the
// resolution engine: a sequence of independent backends tried strictly in
// order, stopping at the first one that produces an address. It exists so
// that transient or blocked DNS failures on one path do not make a domain
// unresolvable when another path still works.
//
// # Pipeline
//
//  1. The system resolver (the platform's default lookup path), restricted
//     to IPv4, bounded by the caller's timeout.
//  2. The pure-Go resolver — a genuinely different code path that bypasses
//     the C library and can succeed where (1) fails.
//  3. If alternate DNS is enabled, direct A-record queries against public
//     recursive resolvers: first the Google pair (8.8.8.8, 8.8.4.4), then
//     the Cloudflare pair (1.1.1.1, 1.0.0.1), each group bounded by the
//     caller's timeout.
//  4. A final retry of (1) at 1.5x the timeout, skipped for short-timeout
//     bulk batches (timeout <= 2s) to bound worst-case latency.
//
// # Basic Usage
//
// Create a pipeline with the alternate-DNS capability and resolve:
//
//	r := dnsresolver.New(dnsresolver.WithAlternateDNS())
//	ip, ok := r.Resolve(ctx, "example.com", 3*time.Second)
//	if !ok {
//		// valid outcome: the domain has no answer on any path
//	}
//
// # Error Handling
//
// Resolve never returns an error. Name errors, timeouts and OS-level
// resolver failures at any step are treated as "no answer on this path" and
// the pipeline moves on; they are visible only at debug log level. The
// sentinel errors (ErrNoRecords, ErrEmptyMsg) are used between the pipeline
// and its backends.
//
// # Concurrency
//
// A Client holds no mutable state after construction and is safe for
// concurrent use by any number of workers. The alternate-DNS capability is
// selected once at construction, not per call.
package dnsresolver
