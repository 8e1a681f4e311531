package refs

import (
	"reflect"
	"testing"
)

func TestInline(t *testing.T) {
	body := "See [[note-a]] and [[note-b|an alias]].\nAlso [[ note-a ]] again."
	got := Inline(body)
	want := []string{"note-a", "note-b", "note-a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Inline = %v, want %v", got, want)
	}
}

func TestInline_ExcludesBlobTokens(t *testing.T) {
	body := "A picture: [[gdblob:sha256-" + hex64('a') + "]] and [[note-a]]."
	got := Inline(body)
	if !reflect.DeepEqual(got, []string{"note-a"}) {
		t.Errorf("Inline = %v", got)
	}
	blobs := InlineBlobs(body)
	if !reflect.DeepEqual(blobs, []string{hex64('a')}) {
		t.Errorf("InlineBlobs = %v", blobs)
	}
}

func TestInline_EmptyTargets(t *testing.T) {
	if got := Inline("[[ ]] and [[|alias]]"); len(got) != 0 {
		t.Errorf("Inline = %v, want none", got)
	}
}

func TestStructured(t *testing.T) {
	fields := map[string]any{
		"owner": map[string]any{"ref": "person-1"},
		"parts": []any{
			map[string]any{"refs": []any{"part-a", "[[part-b]]"}},
		},
		"deep": map[string]any{
			"nested": map[string]any{"ref": " spaced "},
		},
		"plain": "no refs here",
	}
	got := Structured(fields)
	seen := make(map[string]bool)
	for _, r := range got {
		seen[r] = true
	}
	for _, want := range []string{"person-1", "part-a", "part-b", "spaced"} {
		if !seen[want] {
			t.Errorf("missing %q in %v", want, got)
		}
	}
}

func TestExtract(t *testing.T) {
	fields := map[string]any{
		"owner":   map[string]any{"ref": "person-1"},
		"caption": "inline in a field: [[note-b]]",
	}
	body := "[[note-b]] [[self-id]] [[note-a]]"
	got := Extract(fields, body, "self-id")
	want := []string{"note-a", "note-b", "person-1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}
}

func TestExtractBlobs(t *testing.T) {
	fields := map[string]any{"img": "[[gdblob:sha256-" + hex64('b') + "]]"}
	body := "[[gdblob:sha256-" + hex64('a') + "]] and [[gdblob:sha256-" + hex64('a') + "]]"
	got := ExtractBlobs(fields, body)
	want := []string{hex64('a'), hex64('b')}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractBlobs = %v, want %v", got, want)
	}
}

func hex64(c byte) string {
	b := make([]byte, 64)
	for i := range b {
		b[i] = c
	}
	return string(b)
}
