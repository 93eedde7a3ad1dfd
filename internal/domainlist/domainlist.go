// Package domainlist reads and normalizes lists of domain names.
// Input files contain one domain per line; blank lines and '#' comments are
// skipped. Entries may carry scheme prefixes, www prefixes, paths or ports,
// all of which are stripped. Duplicates are removed case-insensitively while
// the first occurrence's casing is preserved for output.
package domainlist

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/zumuvik/updater-hosts/internal/filesys"
)

// ErrEmptyList is returned when a domain list file contains no usable entries.
var ErrEmptyList = errors.New("no domains found")

// Read loads, normalizes and deduplicates the domain list at path.
func Read(fsys filesys.ReadWriteFS, path string) ([]string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening domain list: %w", err)
	}
	defer f.Close()

	var domains []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d, err := Normalize(line)
		if err != nil {
			continue // skip unparseable entries rather than abort the batch
		}
		domains = append(domains, d)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading domain list: %w", err)
	}

	domains = Dedupe(domains)
	if len(domains) == 0 {
		return nil, ErrEmptyList
	}
	return domains, nil
}

// Normalize strips scheme and www prefixes plus any path or port suffix from
// a raw list entry, returning the bare host. The original casing is kept;
// callers that need a comparison form should use Key.
func Normalize(raw string) (string, error) {
	d := strings.TrimSpace(raw)

	for _, prefix := range [...]string{"http://", "https://"} {
		if len(d) >= len(prefix) && strings.EqualFold(d[:len(prefix)], prefix) {
			d = d[len(prefix):]
			break
		}
	}
	if len(d) >= 4 && strings.EqualFold(d[:4], "www.") {
		d = d[4:]
	}

	// Cut path, then port. Entries are host names, not URLs, so a plain
	// colon split is enough (no IPv6 literals in a hosts source list).
	if i := strings.IndexByte(d, '/'); i != -1 {
		d = d[:i]
	}
	if i := strings.IndexByte(d, ':'); i != -1 {
		d = d[:i]
	}

	d = strings.Trim(strings.TrimSpace(d), ".")
	if d == "" {
		return "", errors.New("empty domain")
	}
	return d, nil
}

// Key returns the canonical comparison form of a normalized domain:
// lower-cased, with internationalized names folded to punycode.
func Key(domain string) string {
	if !isASCII(domain) {
		if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
			return strings.ToLower(ascii)
		}
	}
	return strings.ToLower(domain)
}

// Dedupe removes case-insensitive duplicates, keeping the first occurrence's
// casing and the original order.
func Dedupe(domains []string) []string {
	seen := make(map[string]struct{}, len(domains))
	unique := domains[:0]
	for _, d := range domains {
		k := Key(d)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, d)
	}
	return unique
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
