// Package snapshot defines the immutable file-set input consumed by the
// graphdown core: a mapping from POSIX-style relative path to raw bytes.
package snapshot

import "sort"

// Snapshot maps relative POSIX paths to raw file content. The core never
// mutates a snapshot; callers own the backing map.
type Snapshot map[string][]byte

// Paths returns every path in the snapshot, sorted lexicographically.
// Every whole-snapshot iteration in the core goes through this so that
// duplicate detection and error collection order are reproducible.
func (s Snapshot) Paths() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Has reports whether the snapshot contains the given path.
func (s Snapshot) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// HasDir reports whether any path lives under the given directory prefix.
// The prefix must include the trailing slash (e.g. "types/").
func (s Snapshot) HasDir(prefix string) bool {
	for p := range s {
		if len(p) > len(prefix) && p[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
