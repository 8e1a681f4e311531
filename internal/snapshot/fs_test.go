package snapshot

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFromDir(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"types/note.md":       "---\ntypeId: note\nfields: {}\n---\n",
		"records/note/one.md": "---\ntypeId: note\nrecordId: one\nfields: {}\n---\n",
		"blobs/sha256/ab/cd":  "binary",
	}
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Hidden entries are skipped.
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("ref"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".env"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := FromDir(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"blobs/sha256/ab/cd", "records/note/one.md", "types/note.md"}
	if got := snap.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
	if string(snap["blobs/sha256/ab/cd"]) != "binary" {
		t.Errorf("blob content = %q", snap["blobs/sha256/ab/cd"])
	}
}

func TestFromDir_HiddenRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".dataset")
	if err := os.MkdirAll(filepath.Join(root, "types"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "---\ntypeId: note\nfields: {}\n---\n"
	if err := os.WriteFile(filepath.Join(root, "types", "note.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := FromDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if got := snap.Paths(); !reflect.DeepEqual(got, []string{"types/note.md"}) {
		t.Errorf("paths = %v, want the tree under the dot-root", got)
	}
}

func TestFromDir_NotADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := FromDir(f); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}

func TestHasDir(t *testing.T) {
	snap := Snapshot{"types/a.md": nil, "records/x/y.md": nil}
	if !snap.HasDir("types/") || !snap.HasDir("records/") {
		t.Error("HasDir missed existing directories")
	}
	if snap.HasDir("datasets/") || snap.HasDir("type/") {
		t.Error("HasDir matched absent directories")
	}
}
