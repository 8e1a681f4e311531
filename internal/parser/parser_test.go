package parser

import (
	"reflect"
	"testing"

	"github.com/johnbenac/graphdown/internal/apperr"
)

func TestSniff(t *testing.T) {
	cases := []struct {
		name string
		path string
		data string
		want bool
	}{
		{"markdown with front matter", "types/a.md", "---\ntypeId: a\n---\n", true},
		{"crlf front matter", "types/a.md", "---\r\ntypeId: a\r\n---\r\n", true},
		{"markdown without front matter", "readme.md", "# hi\n", false},
		{"non-markdown", "blobs/sha256/ab/abcd", "---\n", false},
		{"delimiter not on first line", "a.md", "\n---\n", false},
		{"delimiter without newline", "a.md", "---", false},
	}
	for _, tc := range cases {
		if got := Sniff(tc.path, []byte(tc.data)); got != tc.want {
			t.Errorf("%s: Sniff = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDecodeText_InvalidUTF8(t *testing.T) {
	_, err := DecodeText("a.md", []byte{0xff, 0xfe, 0x01})
	if err == nil || err.Code != apperr.CodeUTF8Invalid {
		t.Fatalf("err = %v, want %s", err, apperr.CodeUTF8Invalid)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	if got := NormalizeNewlines("a\r\nb\rc\n"); got != "a\nb\nc\n" {
		t.Errorf("NormalizeNewlines = %q", got)
	}
}

func TestSplitFrontMatter(t *testing.T) {
	header, body, err := SplitFrontMatter("a.md", "---\ntypeId: note\nfields: {}\n---\nBody line.\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if header != "typeId: note\nfields: {}" {
		t.Errorf("header = %q", header)
	}
	if body != "Body line.\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontMatter_Missing(t *testing.T) {
	_, _, err := SplitFrontMatter("a.md", "typeId: note\n---\n")
	if err == nil || err.Code != apperr.CodeFrontMatterMissing {
		t.Fatalf("err = %v, want %s", err, apperr.CodeFrontMatterMissing)
	}
	if err.File != "a.md" {
		t.Errorf("file = %q, want a.md", err.File)
	}
}

func TestSplitFrontMatter_Unterminated(t *testing.T) {
	_, _, err := SplitFrontMatter("a.md", "---\ntypeId: note\n")
	if err == nil || err.Code != apperr.CodeFrontMatterUnterminated {
		t.Fatalf("err = %v, want %s", err, apperr.CodeFrontMatterUnterminated)
	}
}

func TestDecodeHeader(t *testing.T) {
	doc, err := DecodeHeader("a.md", "typeId: note\nfields:\n  title: Hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["typeId"] != "note" {
		t.Errorf("typeId = %v", doc["typeId"])
	}
}

func TestDecodeHeader_Empty(t *testing.T) {
	doc, err := DecodeHeader("a.md", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("doc = %v, want empty", doc)
	}
}

func TestDecodeHeader_Invalid(t *testing.T) {
	_, err := DecodeHeader("a.md", ": broken: yaml: {{{")
	if err == nil || err.Code != apperr.CodeDocumentInvalid {
		t.Fatalf("err = %v, want %s", err, apperr.CodeDocumentInvalid)
	}
}

func TestDecodeHeader_NotObject(t *testing.T) {
	for _, header := range []string{"- a\n- b", "just a scalar"} {
		_, err := DecodeHeader("a.md", header)
		if err == nil || err.Code != apperr.CodeDocumentNotObject {
			t.Errorf("header %q: err = %v, want %s", header, err, apperr.CodeDocumentNotObject)
		}
	}
}

func TestRender_RoundTrip(t *testing.T) {
	doc := map[string]any{
		"typeId":   "note",
		"recordId": "one",
		"fields": map[string]any{
			"id":    "note-one",
			"tags":  []any{"a", "b"},
			"count": 3,
		},
	}
	body := "Some body.\n\nWith [[a-link]].\n"

	text, renderErr := Render(doc, body)
	if renderErr != nil {
		t.Fatalf("render: %v", renderErr)
	}
	header, gotBody, err := SplitFrontMatter("a.md", text)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if gotBody != body {
		t.Errorf("body = %q, want %q", gotBody, body)
	}
	gotDoc, err := DecodeHeader("a.md", header)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(gotDoc, doc) {
		t.Errorf("doc = %#v, want %#v", gotDoc, doc)
	}
}
