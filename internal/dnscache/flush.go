// Package dnscache flushes the operating system's DNS cache after the
// system hosts file has been changed, so new entries take effect without a
// reboot. Flushing is strictly best-effort: the right command depends on
// which resolver daemon is running, and a miss is reported, not fatal.
package dnscache

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/mitchellh/go-ps"
	"go.uber.org/multierr"

	"github.com/zumuvik/updater-hosts/internal/log"
)

// ErrNoCacheDaemon is returned when no known DNS cache daemon is detected,
// in which case there is nothing to flush.
var ErrNoCacheDaemon = errors.New("no known DNS cache daemon running")

var _ ProcessChecker = (*DefaultProcessChecker)(nil)

// ProcessChecker is an interface for checking if a process is running.
type ProcessChecker interface {
	IsRunning(name string) bool
}

// DefaultProcessChecker provides the default implementation of ProcessChecker.
type DefaultProcessChecker struct{}

// IsRunning checks if a process with the given name is running.
func (pc *DefaultProcessChecker) IsRunning(name string) bool {
	procs, err := ps.Processes()
	if err != nil {
		return false
	}

	for _, proc := range procs {
		if procName := proc.Executable(); len(procName) >= len(name) {
			if strings.EqualFold(procName[:len(name)], name) {
				return true
			}
		}
	}
	return false
}

// Runner executes a flush command. Injected so tests never shell out.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Flusher picks and runs the DNS cache flush command for the host system.
type Flusher struct {
	Proc ProcessChecker
	Run  Runner
	GOOS string
}

// New creates a Flusher for the given GOOS (runtime.GOOOS at the call site)
// backed by real process inspection and command execution.
func New(goos string) *Flusher {
	return &Flusher{
		Proc: &DefaultProcessChecker{},
		Run:  execRunner,
		GOOS: goos,
	}
}

// Flush clears the OS DNS cache. On Linux the resolver daemon is detected
// first, since the flush command differs between systemd-resolved and nscd;
// with neither running ErrNoCacheDaemon is returned.
func (f *Flusher) Flush(ctx context.Context) error {
	switch f.GOOS {
	case "darwin":
		err := f.Run(ctx, "dscacheutil", "-flushcache")
		return multierr.Append(err, f.Run(ctx, "killall", "-HUP", "mDNSResponder"))

	case "windows":
		return f.Run(ctx, "ipconfig", "/flushdns")

	case "linux":
		switch {
		case f.Proc.IsRunning("systemd-resolve"):
			// Covers both systemd-resolved and the older systemd-resolve
			// binary name; resolvectl is the current front-end.
			if err := f.Run(ctx, "resolvectl", "flush-caches"); err == nil {
				return nil
			}
			return f.Run(ctx, "systemd-resolve", "--flush-caches")
		case f.Proc.IsRunning("nscd"):
			return f.Run(ctx, "nscd", "-i", "hosts")
		case f.Proc.IsRunning("dnsmasq"):
			log.Warnf("dnscache: dnsmasq caches in-process; restart it to flush")
			return ErrNoCacheDaemon
		default:
			return ErrNoCacheDaemon
		}

	default:
		return ErrNoCacheDaemon
	}
}
