// Package engine orchestrates the concurrent resolution of a domain batch.
// It owns the bounded worker pool, runs the per-domain fallback pipeline
// (direct backends, then the similar-domain heuristic, then TLD/subdomain
// variants), keeps the shared success registry and progress counters, and
// reassembles results in the input order.
package engine

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zumuvik/updater-hosts/internal/config"
	"github.com/zumuvik/updater-hosts/internal/dnsresolver"
	"github.com/zumuvik/updater-hosts/internal/heuristic"
	"github.com/zumuvik/updater-hosts/internal/log"
	"github.com/zumuvik/updater-hosts/internal/progress"
	"github.com/zumuvik/updater-hosts/internal/registry"
)

// How many registry suggestions a failing domain considers.
const _maxSuggestions = 3

// Source identifies which strategy produced a result's IP.
type Source int

const (
	// SourceNone marks a domain that exhausted every strategy.
	SourceNone Source = iota
	// SourceDirect marks a direct backend answer.
	SourceDirect
	// SourceSimilar marks an IP borrowed from a similar resolved domain.
	SourceSimilar
	// SourceVariant marks an answer from a TLD/subdomain variant probe.
	SourceVariant
)

// String returns a short label for logs and summaries.
func (s Source) String() string {
	switch s {
	case SourceDirect:
		return "direct"
	case SourceSimilar:
		return "similar"
	case SourceVariant:
		return "variant"
	default:
		return "none"
	}
}

// Task is one unit of work: a single domain plus the position it must take
// in the final output. Tasks are created once at batch start and consumed by
// exactly one worker.
type Task struct {
	Domain  string
	Index   int
	Timeout time.Duration
}

// Result is the outcome of one task. IP is nil when every strategy failed;
// Index restores the input ordering.
type Result struct {
	Domain string
	IP     net.IP
	Index  int
	Source Source
}

// Resolved reports whether any strategy produced an address.
func (r Result) Resolved() bool { return r.IP != nil }

// Observer is invoked after each task completes with the batch counters at
// that moment. Invocations are serialized by the engine.
type Observer func(progress.Snapshot)

// Engine resolves batches of domains through a bounded worker pool.
type Engine struct {
	resolver dnsresolver.Resolver
	timeout  time.Duration // 0 = choose from batch size
	workers  int           // 0 = choose from batch size
	fallback bool
	observer Observer

	mu      sync.Mutex        // serializes observer calls
	tracker *progress.Tracker // current batch; replaced at batch start
	trkMu   sync.RWMutex      // guards tracker swap vs. Progress()
}

// Opt is a function option for configuring the Engine.
type Opt func(e *Engine)

// New creates an Engine over the given resolution pipeline.
func New(resolver dnsresolver.Resolver, opts ...Opt) *Engine {
	e := &Engine{
		resolver: resolver,
		fallback: true,
		tracker:  progress.NewTracker(),
	}

	for _, o := range opts {
		o(e)
	}

	return e
}

// WithTimeout sets a fixed per-lookup timeout, clamped to the configured
// bounds. Zero keeps automatic selection from the batch size.
func WithTimeout(d time.Duration) Opt {
	return func(e *Engine) {
		if d != 0 {
			d = config.ClampTimeout(d)
		}
		e.timeout = d
	}
}

// WithWorkers sets a fixed worker count, clamped to the configured bounds.
// Zero keeps automatic selection from the batch size.
func WithWorkers(n int) Opt {
	return func(e *Engine) {
		if n != 0 {
			n = config.ClampWorkers(n)
		}
		e.workers = n
	}
}

// WithSimilarFallback toggles the heuristic fallback chain (registry
// suggestions and variant probes) for domains that fail direct resolution.
func WithSimilarFallback(enabled bool) Opt {
	return func(e *Engine) {
		e.fallback = enabled
	}
}

// WithObserver registers a callback invoked after every task completion.
func WithObserver(o Observer) Opt {
	return func(e *Engine) {
		e.observer = o
	}
}

// WorkersFor picks a worker pool size from the batch size.
func WorkersFor(batch int) int {
	switch {
	case batch < 100:
		return 10
	case batch < 1000:
		return 30
	case batch < 10000:
		return 50
	default:
		return 100
	}
}

// TimeoutFor picks a per-lookup timeout from the batch size. Small batches
// can afford patience; very large ones trade accuracy for throughput.
func TimeoutFor(batch int) time.Duration {
	switch {
	case batch < 100:
		return 5 * time.Second
	case batch < 10000:
		return 3 * time.Second
	default:
		return 2 * time.Second
	}
}

// ResolveBatch resolves every domain of the batch and returns the results
// in the input order. The input is expected normalized and deduplicated.
//
// At most the configured number of resolutions run concurrently; excess
// tasks queue until a worker frees up. Cancelling ctx stops the pipeline
// for tasks not yet started — their results are reported as failures — while
// in-flight lookups finish within their own timeouts. The batch itself never
// aborts: total resolution failure of a domain is a valid outcome.
func (e *Engine) ResolveBatch(ctx context.Context, domains []string) []Result {
	total := len(domains)
	if total == 0 {
		return nil
	}

	workers := e.workers
	if workers == 0 {
		workers = WorkersFor(total)
	}
	if workers > total {
		workers = total
	}
	timeout := e.timeout
	if timeout == 0 {
		timeout = TimeoutFor(total)
	}

	batchID := uuid.NewString()
	log.Info("engine: batch starting",
		"batch", batchID, "domains", total, "workers", workers,
		"timeout", timeout, "fallback", e.fallback)

	// Fresh shared state per batch: the registry grows only from this
	// batch's successes and is discarded with it.
	reg := registry.New()
	tracker := progress.NewTracker()
	e.trkMu.Lock()
	e.tracker = tracker
	e.trkMu.Unlock()

	prober := heuristic.NewProber(e.resolver)

	tasks := make(chan Task, total)
	for i, d := range domains {
		tasks <- Task{Domain: d, Index: i, Timeout: timeout}
	}
	close(tasks)

	// Each task owns a distinct index, so workers write to disjoint slots
	// and the slice needs no lock.
	results := make([]Result, total)

	grp := &errgroup.Group{}
	for w := 0; w < workers; w++ {
		grp.Go(func() error {
			for task := range tasks {
				if ctx.Err() != nil {
					// Stop starting new work; report the rest as failed.
					results[task.Index] = Result{Domain: task.Domain, Index: task.Index}
					e.finishTask(tracker, false)
					continue
				}

				res := e.resolveTask(ctx, task, reg, prober)
				results[task.Index] = res
				e.finishTask(tracker, res.Resolved())
			}
			return nil
		})
	}
	_ = grp.Wait() // workers never return errors

	snap := tracker.Snapshot()
	log.Info("engine: batch finished",
		"batch", batchID, "succeeded", snap.Succeeded, "failed", snap.Failed,
		"elapsed", snap.Elapsed)

	return results
}

// Progress returns the counters of the current (or most recent) batch.
// Safe to call from another goroutine while a batch runs.
func (e *Engine) Progress() progress.Snapshot {
	e.trkMu.RLock()
	defer e.trkMu.RUnlock()
	return e.tracker.Snapshot()
}

// resolveTask runs the full strategy chain for one domain:
// direct backends, then registry suggestions, then variant probes.
func (e *Engine) resolveTask(ctx context.Context, task Task, reg *registry.Registry, prober *heuristic.Prober) Result {
	res := Result{Domain: task.Domain, Index: task.Index}

	if ip, ok := e.resolver.Resolve(ctx, task.Domain, task.Timeout); ok {
		res.IP = ip
		res.Source = SourceDirect
	} else if e.fallback {
		if ip, ok := e.trySimilar(task.Domain, reg); ok {
			res.IP = ip
			res.Source = SourceSimilar
		} else if ip, ok := prober.Probe(ctx, task.Domain); ok {
			res.IP = ip
			res.Source = SourceVariant
		}
	}

	if res.Resolved() {
		reg.Add(task.Domain, res.IP)
		log.Debug("engine: resolved",
			"domain", task.Domain, "ip", res.IP.String(), "source", res.Source.String())
	} else {
		log.Debug("engine: unresolved", "domain", task.Domain)
	}

	return res
}

// trySimilar adopts the first syntactically valid IPv4 among the registry's
// suggestions for a failing domain. The scan runs over a snapshot so it
// never blocks other workers' registry writes.
func (e *Engine) trySimilar(domain string, reg *registry.Registry) (net.IP, bool) {
	snapshot := reg.Snapshot()
	for _, s := range heuristic.SimilarDomains(domain, snapshot, _maxSuggestions) {
		// Re-validate defensively even though only validated IPs are stored.
		if v4 := s.IP.To4(); v4 != nil {
			log.Debugf("engine: %q borrowing %s from %q (%s)",
				domain, v4.String(), s.Domain, s.Reason)
			return v4, true
		}
	}
	return nil, false
}

// finishTask updates the counters and notifies the observer under a lock so
// progress lines from concurrent workers never interleave.
func (e *Engine) finishTask(tracker *progress.Tracker, ok bool) {
	tracker.Record(ok)
	if e.observer == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observer(tracker.Snapshot())
}
