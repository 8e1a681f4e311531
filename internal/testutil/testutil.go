// Package testutil provides shared fixtures: in-memory snapshots and
// temporary databases.
package testutil

import (
	"os"
	"testing"

	"github.com/johnbenac/graphdown/internal/index"
	"github.com/johnbenac/graphdown/internal/snapshot"
)

// Object renders a dataset object file from a header block (without
// delimiters) and a body.
func Object(header, body string) []byte {
	return []byte("---\n" + header + "\n---\n" + body)
}

// BaseSnapshot returns a minimal valid snapshot: one note type and two
// note records that link to each other.
func BaseSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		"types/note.md": Object(
			"typeId: note\n"+
				"fields:\n"+
				"  id: type-note\n"+
				"  recordTypeId: note\n"+
				"  displayFields:\n"+
				"    - title\n"+
				"  fieldDefs:\n"+
				"    title:\n"+
				"      required: true",
			"Notes are free-form text records.\n"),
		"records/note/one.md": Object(
			"typeId: note\n"+
				"recordId: one\n"+
				"fields:\n"+
				"  id: note-one\n"+
				"  title: First note",
			"Points at [[note-two]].\n"),
		"records/note/two.md": Object(
			"typeId: note\n"+
				"recordId: two\n"+
				"fields:\n"+
				"  id: note-two\n"+
				"  title: Second note",
			"Points back at [[note-one|the first]].\n"),
	}
}

// CompositionSnapshot returns a car/engine dataset where every car must
// link to at least one engine.
func CompositionSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		"types/car.md": Object(
			"typeId: car\n"+
				"fields:\n"+
				"  id: type-car\n"+
				"  recordTypeId: car\n"+
				"  composition:\n"+
				"    engine:\n"+
				"      recordTypeId: engine\n"+
				"      min: 1",
			""),
		"types/engine.md": Object(
			"typeId: engine\n"+
				"fields:\n"+
				"  id: type-engine\n"+
				"  recordTypeId: engine",
			""),
		"records/engine/e1.md": Object(
			"typeId: engine\n"+
				"recordId: e1\n"+
				"fields:\n"+
				"  id: engine-e1",
			""),
		"records/car/c1.md": Object(
			"typeId: car\n"+
				"recordId: c1\n"+
				"fields:\n"+
				"  id: car-c1",
			"Fitted with [[engine:e1]].\n"),
	}
}

// TestDB creates a temporary SQLite index database that is cleaned up with
// the test.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "graphdown-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WriteSnapshotDir materializes a snapshot into a temp directory and
// returns its root.
func WriteSnapshotDir(t *testing.T, snap snapshot.Snapshot) string {
	t.Helper()
	root := t.TempDir()
	for path, data := range snap {
		full := root + "/" + path
		if err := os.MkdirAll(dirOf(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
