package object

import (
	"testing"

	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/snapshot"
)

func TestValidateIdentifier(t *testing.T) {
	valid := []string{"a", "A1", "note", "my-type", "under_score", "0leading"}
	for _, s := range valid {
		if got, err := ValidateIdentifier(s, "f.md", RoleTypeID); err != nil || got != s {
			t.Errorf("%q: got %q, err %v", s, got, err)
		}
	}

	invalid := []any{"", " note", "note ", "-leading", "has:colon", "has space", 42, nil, "пример"}
	for _, v := range invalid {
		if _, err := ValidateIdentifier(v, "f.md", RoleTypeID); err == nil {
			t.Errorf("%v: expected error", v)
		} else if err.Code != apperr.CodeInvalidIdentifier {
			t.Errorf("%v: code = %s", v, err.Code)
		}
	}
}

func TestValidateIdentifier_Reserved(t *testing.T) {
	if _, err := ValidateIdentifier("gdblob", "f.md", RoleTypeID); err == nil {
		t.Error("gdblob must be rejected as a typeId")
	}
	// The reservation applies to type identifiers only.
	if _, err := ValidateIdentifier("gdblob", "f.md", RoleRecordID); err != nil {
		t.Errorf("gdblob as recordId: %v", err)
	}
}

func TestClassify_NoTypeIDIsIgnored(t *testing.T) {
	obj := Classify("f.md", map[string]any{"title": "plain markdown"}, "body")
	if obj.Kind != KindIgnored {
		t.Fatalf("kind = %v, want ignored", obj.Kind)
	}
}

func TestClassify_InvalidTypeIDIsError(t *testing.T) {
	obj := Classify("f.md", map[string]any{"typeId": "has:colon"}, "")
	if obj.Kind != KindInvalid || obj.Err.Code != apperr.CodeInvalidIdentifier {
		t.Fatalf("obj = %+v", obj)
	}
}

func TestClassify_ForbiddenTopLevelKey(t *testing.T) {
	obj := Classify("f.md", map[string]any{
		"typeId": "note",
		"fields": map[string]any{},
		"extra":  true,
	}, "")
	if obj.Kind != KindInvalid || obj.Err.Code != apperr.CodeForbiddenTopLevelKey {
		t.Fatalf("obj = %+v", obj)
	}
}

func TestClassify_FieldsRequired(t *testing.T) {
	for _, doc := range []map[string]any{
		{"typeId": "note"},
		{"typeId": "note", "fields": "not an object"},
		{"typeId": "note", "fields": []any{}},
	} {
		obj := Classify("f.md", doc, "")
		if obj.Kind != KindInvalid || obj.Err.Code != apperr.CodeRequiredFieldMissing {
			t.Errorf("doc %v: obj = %+v", doc, obj)
		}
	}
}

func TestClassify_TypeAndRecord(t *testing.T) {
	typ := Classify("types/note.md", map[string]any{
		"typeId": "note",
		"fields": map[string]any{"recordTypeId": "note"},
	}, "body")
	if typ.Kind != KindType || typ.TypeID != "note" || typ.Identity() != "note" {
		t.Fatalf("type obj = %+v", typ)
	}

	rec := Classify("records/note/one.md", map[string]any{
		"typeId":   "note",
		"recordId": "one",
		"fields":   map[string]any{"id": "note-one"},
	}, "body")
	if rec.Kind != KindRecord || rec.Identity() != "note:one" {
		t.Fatalf("record obj = %+v", rec)
	}
	if rec.DeclaredID() != "note-one" {
		t.Errorf("declared id = %q", rec.DeclaredID())
	}
}

func TestClassify_MissingRecordIDBecomesType(t *testing.T) {
	// A record file that forgets recordId classifies as a type object;
	// downstream type checks surface the mistake.
	obj := Classify("records/note/one.md", map[string]any{
		"typeId": "note",
		"fields": map[string]any{"title": "oops"},
	}, "")
	if obj.Kind != KindType {
		t.Fatalf("kind = %v, want type", obj.Kind)
	}
}

func TestDiscover_Partition(t *testing.T) {
	snap := snapshot.Snapshot{
		"types/note.md":       []byte("---\ntypeId: note\nfields:\n  recordTypeId: note\n---\n"),
		"records/note/one.md": []byte("---\ntypeId: note\nrecordId: one\nfields: {}\n---\n"),
		"records/note/bad.md": []byte("---\ntypeId: 'has:colon'\nrecordId: x\nfields: {}\n---\n"),
		"notes/plain.md":      []byte("---\ntitle: no type here\n---\n"),
		"README.md":           []byte("# readme\n"),
		"blobs/sha256/ab/cd":  []byte{0x01, 0x02},
	}
	d := Discover(snap)

	if len(d.Types) != 1 || d.Types[0].File != "types/note.md" {
		t.Errorf("types = %+v", d.Types)
	}
	if len(d.Records) != 1 || d.Records[0].File != "records/note/one.md" {
		t.Errorf("records = %+v", d.Records)
	}
	if len(d.Errors) != 1 || d.Errors[0].Code != apperr.CodeInvalidIdentifier {
		t.Errorf("errors = %v", d.Errors)
	}
	// Both the typeId-less file and the sniff-rejected markdown are
	// ignored; the blob payload is inert.
	if len(d.Ignored) != 2 {
		t.Errorf("ignored = %v", d.Ignored)
	}
}
