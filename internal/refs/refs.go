// Package refs extracts reference targets from graphdown objects. Two
// independent encodings produce bare identifiers: structured ref/refs
// fields anywhere in the fields tree, and inline [[target]] /
// [[target|alias]] links in free text. Blob tokens share the bracket
// syntax but are extracted separately and never count as record
// references.
package refs

import (
	"regexp"
	"sort"
	"strings"

	"github.com/johnbenac/graphdown/internal/blob"
)

var wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)

// normalize strips an optional outer [[...]] wrapper and |alias suffix and
// trims whitespace. Returns "" for targets that normalize to nothing.
func normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "[[") && strings.HasSuffix(s, "]]") {
		s = s[2 : len(s)-2]
	}
	if i := strings.IndexByte(s, '|'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Inline returns record-reference targets from [[...]] links in text, in
// order of appearance. Blob tokens are excluded.
func Inline(text string) []string {
	var out []string
	for _, m := range wikilinkRe.FindAllStringSubmatch(text, -1) {
		target := normalize(m[1])
		if target == "" {
			continue
		}
		if _, isBlob := blob.ParseToken(target); isBlob {
			continue
		}
		out = append(out, target)
	}
	return out
}

// InlineBlobs returns the digests of [[gdblob:sha256-...]] tokens in text,
// in order of appearance.
func InlineBlobs(text string) []string {
	var out []string
	for _, m := range wikilinkRe.FindAllStringSubmatch(text, -1) {
		if digest, ok := blob.ParseToken(normalize(m[1])); ok {
			out = append(out, digest)
		}
	}
	return out
}

// Structured walks a fields value tree and returns the targets of every
// ref (single) and refs (list) key, at any nesting depth.
func Structured(value any) []string {
	var out []string
	walkStructured(value, &out)
	return out
}

func walkStructured(value any, out *[]string) {
	switch v := value.(type) {
	case map[string]any:
		if ref, ok := v["ref"].(string); ok {
			if t := normalize(ref); t != "" {
				*out = append(*out, t)
			}
		}
		if list, ok := v["refs"].([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok {
					if t := normalize(s); t != "" {
						*out = append(*out, t)
					}
				}
			}
		}
		for _, nested := range v {
			walkStructured(nested, out)
		}
	case []any:
		for _, item := range v {
			walkStructured(item, out)
		}
	}
}

// stringLeaves collects every string leaf in a fields value tree, so inline
// link syntax inside field values is scanned the same way as body text.
func stringLeaves(value any, out *[]string) {
	switch v := value.(type) {
	case string:
		*out = append(*out, v)
	case map[string]any:
		for _, nested := range v {
			stringLeaves(nested, out)
		}
	case []any:
		for _, item := range v {
			stringLeaves(item, out)
		}
	}
}

// Extract returns the full de-duplicated reference set of one object:
// structured refs plus inline links over both the fields tree and the
// body. Self-references are dropped; the result is sorted for
// deterministic adjacency.
func Extract(fields map[string]any, body string, self ...string) []string {
	seen := make(map[string]struct{})
	drop := make(map[string]struct{}, len(self))
	for _, s := range self {
		if s != "" {
			drop[s] = struct{}{}
		}
	}

	add := func(targets []string) {
		for _, t := range targets {
			if _, isSelf := drop[t]; isSelf {
				continue
			}
			seen[t] = struct{}{}
		}
	}

	add(Structured(fields))
	var texts []string
	stringLeaves(fields, &texts)
	for _, t := range texts {
		add(Inline(t))
	}
	add(Inline(body))

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ExtractBlobs returns the de-duplicated, sorted blob digests referenced
// from an object's fields and body.
func ExtractBlobs(fields map[string]any, body string) []string {
	seen := make(map[string]struct{})
	var texts []string
	stringLeaves(fields, &texts)
	texts = append(texts, body)
	for _, t := range texts {
		for _, d := range InlineBlobs(t) {
			seen[d] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
