// Package fingerprint computes the deterministic content digest (gdhash)
// of a dataset snapshot. The digest depends only on the set of
// (identity, normalized content) pairs in the selected scope: file paths,
// traversal order, and line-ending style never affect it.
//
// Unlike validation, fingerprinting is fail-fast: a digest over a
// partially-understood snapshot would be meaningless.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"

	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/object"
	"github.com/johnbenac/graphdown/internal/parser"
	"github.com/johnbenac/graphdown/internal/snapshot"
)

// Scope selects which objects contribute to the digest.
type Scope string

const (
	// ScopeSchema digests type objects only; record edits never change it.
	ScopeSchema Scope = "schema"
	// ScopeSnapshot digests type and record objects.
	ScopeSnapshot Scope = "snapshot"
)

// streamMagic is the versioned domain-separation prefix of the hashed byte
// stream. The trailing NUL terminates it like every other stream field.
const streamMagic = "gdhash/v1\x00"

type entry struct {
	identity string
	content  string
}

// Compute returns the hex-encoded digest of the snapshot for the given
// scope, or the first error encountered.
func Compute(snap snapshot.Snapshot, scope Scope) (string, *apperr.Error) {
	if scope != ScopeSchema && scope != ScopeSnapshot {
		return "", apperr.New(apperr.CodeUsage, "", "unknown fingerprint scope %q", scope)
	}

	var entries []entry
	seen := make(map[string]string) // identity -> file
	for _, path := range snap.Paths() {
		data := snap[path]
		if !parser.Sniff(path, data) {
			continue
		}
		text, err := parser.DecodeText(path, data)
		if err != nil {
			return "", err
		}
		obj := object.ClassifyFile(path, data)
		if obj.Kind == object.KindInvalid {
			return "", obj.Err
		}
		if obj.Kind == object.KindIgnored {
			continue
		}
		if scope == ScopeSchema && obj.Kind != object.KindType {
			continue
		}

		identity := obj.Identity()
		if first, dup := seen[identity]; dup {
			return "", apperr.New(apperr.CodeDuplicateID, path,
				"identity %q already declared by %s", identity, first)
		}
		seen[identity] = path
		entries = append(entries, entry{identity: identity, content: text})
	}

	// Byte-wise lexicographic order over identity bytes; Go string
	// comparison is exactly that.
	sort.Slice(entries, func(i, j int) bool { return entries[i].identity < entries[j].identity })

	h := sha256.New()
	h.Write([]byte(streamMagic))
	for _, e := range entries {
		h.Write([]byte(e.identity))
		h.Write([]byte{0})
		h.Write([]byte(strconv.Itoa(len(e.content))))
		h.Write([]byte{0})
		h.Write([]byte(e.content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
