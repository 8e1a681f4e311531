package datasetservice_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/blob"
	"github.com/johnbenac/graphdown/internal/datasetservice"
	"github.com/johnbenac/graphdown/internal/fingerprint"
	"github.com/johnbenac/graphdown/internal/snapshot"
	"github.com/johnbenac/graphdown/internal/testutil"
)

func newService(t *testing.T, snap snapshot.Snapshot) *datasetservice.Service {
	t.Helper()
	root := testutil.WriteSnapshotDir(t, snap)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return datasetservice.NewService(root, db, logger)
}

func TestReloadAndValidate(t *testing.T) {
	svc := newService(t, testutil.BaseSnapshot())
	ctx := context.Background()

	report, err := svc.Validate(ctx)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !report.OK {
		t.Errorf("expected valid dataset, got %v", report.Errors)
	}
	if report.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
}

func TestValidateReportsErrors(t *testing.T) {
	snap := testutil.BaseSnapshot()
	delete(snap, "types/note.md")
	svc := newService(t, snap)

	report, err := svc.Validate(context.Background())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if report.OK {
		t.Fatal("expected validation errors")
	}
}

func TestGetNode(t *testing.T) {
	svc := newService(t, testutil.BaseSnapshot())
	ctx := context.Background()

	detail, err := svc.GetNode(ctx, "note-one")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if detail.TypeID != "note" || detail.Kind != "record" {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if got := detail.Fields["title"]; got != "First note" {
		t.Errorf("title = %v", got)
	}
	if len(detail.Links) != 1 || detail.Links[0] != "note-two" {
		t.Errorf("links = %v", detail.Links)
	}
	if len(detail.Backlinks) != 1 || detail.Backlinks[0] != "note-two" {
		t.Errorf("backlinks = %v", detail.Backlinks)
	}

	if _, err := svc.GetNode(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing node: got %v", err)
	}
}

func TestFingerprintScopes(t *testing.T) {
	svc := newService(t, testutil.BaseSnapshot())
	ctx := context.Background()

	schemaHash, ferr := svc.Fingerprint(ctx, fingerprint.ScopeSchema)
	if ferr != nil {
		t.Fatalf("schema fingerprint: %v", ferr)
	}
	snapHash, ferr := svc.Fingerprint(ctx, fingerprint.ScopeSnapshot)
	if ferr != nil {
		t.Fatalf("snapshot fingerprint: %v", ferr)
	}
	if schemaHash == snapHash {
		t.Error("schema and snapshot fingerprints should differ for this dataset")
	}
	if len(schemaHash) != 64 {
		t.Errorf("hash length = %d", len(schemaHash))
	}
}

func TestBlob(t *testing.T) {
	content := []byte("blob payload\n")
	digest := blob.Digest(content)

	snap := testutil.BaseSnapshot()
	snap[blob.CanonicalPath(digest)] = content
	svc := newService(t, snap)
	ctx := context.Background()

	got, err := svc.Blob(ctx, digest)
	if err != nil {
		t.Fatalf("Blob: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("blob content = %q", got)
	}

	if _, err := svc.Blob(ctx, blob.Digest([]byte("other"))); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing blob: got %v", err)
	}
}

func TestBlobDigestMismatch(t *testing.T) {
	digest := blob.Digest([]byte("expected"))
	snap := testutil.BaseSnapshot()
	snap[blob.CanonicalPath(digest)] = []byte("tampered")
	svc := newService(t, snap)

	_, err := svc.Blob(context.Background(), digest)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code != apperr.CodeBlobDigestMismatch {
		t.Fatalf("got %v, want blob_digest_mismatch", err)
	}
}

func TestSearchAndList(t *testing.T) {
	svc := newService(t, testutil.BaseSnapshot())
	ctx := context.Background()

	rows, total, err := svc.ListNodes(ctx, "record", "", 0, 0)
	if err != nil {
		t.Fatalf("ListNodes: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("ListNodes: total=%d len=%d", total, len(rows))
	}

	hits, err := svc.Search(ctx, "Points", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Error("expected search hits")
	}
}
