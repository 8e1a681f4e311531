// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes graphdown dataset tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/johnbenac/graphdown/internal/datasetservice"
	"github.com/johnbenac/graphdown/internal/fingerprint"
)

// Server wraps the MCP server with graphdown tools.
type Server struct {
	mcp *server.MCPServer
	svc *datasetservice.Service
}

// New creates a new MCP server with all graphdown tools registered.
func New(svc *datasetservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Graphdown",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("validate_dataset",
		mcp.WithDescription("Run all dataset validation checks and return the accumulated errors."),
	), s.validateDataset)

	s.mcp.AddTool(mcp.NewTool("fingerprint_dataset",
		mcp.WithDescription("Compute the content fingerprint of the dataset. "+
			"Scope 'schema' covers type objects only; 'snapshot' covers everything."),
		mcp.WithString("scope", mcp.Description("Digest scope: schema or snapshot (default snapshot)")),
	), s.fingerprintDataset)

	s.mcp.AddTool(mcp.NewTool("read_node",
		mcp.WithDescription("Read one graph node by id: its fields, body, links, and backlinks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id (e.g. note-one)")),
	), s.readNode)

	s.mcp.AddTool(mcp.NewTool("list_nodes",
		mcp.WithDescription("List graph nodes, optionally filtered by kind or record type."),
		mcp.WithString("kind", mcp.Description("Optional kind filter: type, record, or dataset")),
		mcp.WithString("type", mcp.Description("Optional record type id filter")),
	), s.listNodes)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all nodes that link to the specified node."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the node to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Full-text search through record bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchRecords)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the canonical graphdown object format contract. "+
			"Call this before authoring dataset files to ensure correct structure."),
	), s.getFormatContract)

	// Resource: object format contract.
	s.mcp.AddResource(
		mcp.NewResource("graphdown://object-format", "Object Format Contract",
			mcp.WithResourceDescription("Canonical Markdown object format that all dataset files must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) validateDataset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.svc.Validate(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) fingerprintDataset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := fingerprint.ScopeSnapshot
	if v, err := req.RequireString("scope"); err == nil && v != "" {
		scope = fingerprint.Scope(v)
	}
	hash, ferr := s.svc.Fingerprint(ctx, scope)
	if ferr != nil {
		return mcp.NewToolResultError(ferr.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s", scope, hash)), nil
}

func (s *Server) readNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetNode(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(detail, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := ""
	if v, err := req.RequireString("kind"); err == nil {
		kind = v
	}
	typeID := ""
	if v, err := req.RequireString("type"); err == nil {
		typeID = v
	}
	rows, _, err := s.svc.ListNodes(ctx, kind, typeID, 500, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var lines []string
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", r.ID, r.Kind, r.File))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no nodes found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getFormatContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ObjectFormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "graphdown://object-format",
			MIMEType: "text/markdown",
			Text:     ObjectFormatContract,
		},
	}, nil
}
