// Package hostsfile renders resolution results in hosts-file format and
// applies them: writing the local output atomically, backing up the system
// hosts file, and appending resolved entries to it.
package hostsfile

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/zumuvik/updater-hosts/internal/engine"
	"github.com/zumuvik/updater-hosts/internal/filesys"
)

const (
	// BackupFile is where the system hosts file is copied before changes.
	BackupFile = "hosts.backup"

	_windowsHostsPath = `C:\Windows\System32\drivers\etc\hosts`
	_unixHostsPath    = "/etc/hosts"
)

// ErrNoEntries is returned when an apply finds nothing to append.
var ErrNoEntries = errors.New("no resolved entries to apply")

// Render produces the hosts-file text for a batch: one `IP<TAB>domain` line
// per resolved domain, a commented line per unresolved one, and a trailing
// totals comment.
func Render(results []engine.Result) string {
	var b strings.Builder
	b.WriteString("# hosts file generated by hostsgen\n")
	b.WriteString("# To apply: append to " + _unixHostsPath + " (Linux/macOS) or " + _windowsHostsPath + " (Windows)\n")
	b.WriteString("\n")

	resolved := 0
	for _, r := range results {
		if r.Resolved() {
			fmt.Fprintf(&b, "%s\t%s\n", r.IP.String(), r.Domain)
			resolved++
		} else {
			fmt.Fprintf(&b, "# %s - unresolved\n", r.Domain)
		}
	}

	fmt.Fprintf(&b, "\n# processed: %d, resolved: %d, unresolved: %d\n",
		len(results), resolved, len(results)-resolved)

	return b.String()
}

// SystemPath returns the system hosts file location for the current OS.
func SystemPath() string {
	if runtime.GOOS == "windows" {
		return _windowsHostsPath
	}
	return _unixHostsPath
}

// WriteLocal atomically persists the rendered hosts text to path.
func WriteLocal(fsys filesys.FileOps, path, content string) error {
	if err := filesys.AtomicWrite(fsys, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing hosts file: %w", err)
	}
	return nil
}

// Backup copies the system hosts file to BackupFile in the working
// directory, so the pre-run state can always be restored by hand.
func Backup(fsys filesys.FileOps, systemPath string) error {
	data, err := fsys.ReadFile(systemPath)
	if err != nil {
		return fmt.Errorf("reading system hosts: %w", err)
	}
	if err := fsys.WriteFile(BackupFile, data, 0o644); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// Entries filters rendered hosts text down to the real address lines,
// dropping comments, blanks and anything that is not "IP domain".
func Entries(content string) []string {
	var entries []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(strings.Fields(line)) >= 2 {
			entries = append(entries, line)
		}
	}
	return entries
}

// Append appends the resolved entries of rendered hosts text to the system
// hosts file at systemPath. Requires the caller to have write access
// (typically root). Returns ErrNoEntries when there is nothing to add.
func Append(fsys filesys.FileOps, content, systemPath string) error {
	entries := Entries(content)
	if len(entries) == 0 {
		return ErrNoEntries
	}

	data := strings.Join(entries, "\n") + "\n"
	if err := fsys.AppendFile(systemPath, []byte(data), 0o644); err != nil {
		return fmt.Errorf("appending to %s: %w", systemPath, err)
	}
	return nil
}
