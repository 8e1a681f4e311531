package object

import (
	"strings"

	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/parser"
	"github.com/johnbenac/graphdown/internal/snapshot"
)

// Discovery partitions one snapshot's classification results.
type Discovery struct {
	Types   []Object
	Records []Object
	Ignored []string
	Errors  apperr.List
}

// Objects returns types followed by records. Both slices retain sorted
// path order, so the concatenation is deterministic.
func (d Discovery) Objects() []Object {
	out := make([]Object, 0, len(d.Types)+len(d.Records))
	out = append(out, d.Types...)
	out = append(out, d.Records...)
	return out
}

// Discover classifies every dataset candidate in the snapshot. Paths are
// visited in sorted order so that downstream duplicate detection is
// reproducible. Markdown files that fail the byte-level sniff, and files
// with no typeId header, are reported as ignored; non-Markdown files
// (blob payloads included) are inert.
func Discover(snap snapshot.Snapshot) Discovery {
	var d Discovery
	for _, path := range snap.Paths() {
		data := snap[path]
		if !parser.Sniff(path, data) {
			if strings.HasSuffix(path, ".md") {
				d.Ignored = append(d.Ignored, path)
			}
			continue
		}
		obj := ClassifyFile(path, data)
		switch obj.Kind {
		case KindType:
			d.Types = append(d.Types, obj)
		case KindRecord:
			d.Records = append(d.Records, obj)
		case KindIgnored:
			d.Ignored = append(d.Ignored, path)
		case KindInvalid:
			d.Errors.Add(obj.Err)
		}
	}
	return d
}
