package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/johnbenac/graphdown/internal/datasetservice"
	"github.com/johnbenac/graphdown/internal/snapshot"
	"github.com/johnbenac/graphdown/internal/testutil"
)

func testServer(t *testing.T, snap snapshot.Snapshot) *Server {
	t.Helper()
	root := testutil.WriteSnapshotDir(t, snap)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(datasetservice.NewService(root, db, logger))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we test
	// through the tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "validate_dataset":
		result, err = srv.validateDataset(ctx, req)
	case "fingerprint_dataset":
		result, err = srv.fingerprintDataset(ctx, req)
	case "read_node":
		result, err = srv.readNode(ctx, req)
	case "list_nodes":
		result, err = srv.listNodes(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "search_records":
		result, err = srv.searchRecords(ctx, req)
	case "get_format_contract":
		result, err = srv.getFormatContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestValidateDataset(t *testing.T) {
	srv := testServer(t, testutil.BaseSnapshot())

	r := callTool(t, srv, "validate_dataset", map[string]any{})
	var report struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !report.OK {
		t.Errorf("report = %s", resultText(r))
	}
}

func TestFingerprintDataset(t *testing.T) {
	srv := testServer(t, testutil.BaseSnapshot())

	r := callTool(t, srv, "fingerprint_dataset", map[string]any{"scope": "schema"})
	text := resultText(r)
	if !strings.HasPrefix(text, "schema ") || len(text) != len("schema ")+64 {
		t.Errorf("fingerprint = %q", text)
	}

	r = callTool(t, srv, "fingerprint_dataset", map[string]any{"scope": "bogus"})
	if !r.IsError {
		t.Error("expected error for unknown scope")
	}
}

func TestReadNode(t *testing.T) {
	srv := testServer(t, testutil.BaseSnapshot())

	r := callTool(t, srv, "read_node", map[string]any{"id": "note-one"})
	text := resultText(r)
	if !strings.Contains(text, `"id": "note-one"`) || !strings.Contains(text, "note-two") {
		t.Errorf("read result = %q", text)
	}

	r = callTool(t, srv, "read_node", map[string]any{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing node")
	}
}

func TestListNodes(t *testing.T) {
	srv := testServer(t, testutil.BaseSnapshot())

	r := callTool(t, srv, "list_nodes", map[string]any{"kind": "record"})
	text := resultText(r)
	if !strings.Contains(text, "note-one") || !strings.Contains(text, "note-two") {
		t.Errorf("list result = %q", text)
	}
	if strings.Contains(text, "type-note") {
		t.Errorf("kind filter leaked type objects: %q", text)
	}
}

func TestGetBacklinks(t *testing.T) {
	srv := testServer(t, testutil.BaseSnapshot())

	r := callTool(t, srv, "get_backlinks", map[string]any{"id": "note-two"})
	if text := resultText(r); text != "note-one" {
		t.Errorf("backlinks = %q, want note-one", text)
	}
}

func TestSearchRecords(t *testing.T) {
	srv := testServer(t, testutil.BaseSnapshot())

	r := callTool(t, srv, "search_records", map[string]any{"query": "Points"})
	if text := resultText(r); !strings.Contains(text, "note-") {
		t.Errorf("search result = %q", text)
	}
}

func TestGetFormatContract(t *testing.T) {
	srv := testServer(t, testutil.BaseSnapshot())

	r := callTool(t, srv, "get_format_contract", map[string]any{})
	text := resultText(r)
	if !strings.Contains(text, "typeId") || !strings.Contains(text, "gdblob:sha256-") {
		t.Errorf("contract missing sections: %q", text[:80])
	}
}
