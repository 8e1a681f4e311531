// Package datasetservice coordinates the dataset snapshot, the in-memory
// graph, validation, and the SQLite index behind one concurrency-safe
// facade used by the API, MCP, and CLI surfaces.
package datasetservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/blob"
	"github.com/johnbenac/graphdown/internal/fingerprint"
	"github.com/johnbenac/graphdown/internal/graph"
	"github.com/johnbenac/graphdown/internal/index"
	"github.com/johnbenac/graphdown/internal/snapshot"
	"github.com/johnbenac/graphdown/internal/validate"
)

// NodeDetail is the full representation of one graph node.
type NodeDetail struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	TypeID    string         `json:"typeId"`
	RecordID  string         `json:"recordId,omitempty"`
	File      string         `json:"file"`
	Fields    map[string]any `json:"fields,omitempty"`
	Body      string         `json:"body"`
	Links     []string       `json:"links"`
	Backlinks []string       `json:"backlinks"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ValidationReport pairs a validation result with the time the dataset was
// last loaded from disk.
type ValidationReport struct {
	OK       bool            `json:"ok"`
	Errors   []*apperr.Error `json:"errors"`
	LoadedAt time.Time       `json:"loaded_at"`
}

// Service owns the latest loaded dataset state.
type Service struct {
	root   string
	db     *index.DB
	logger *slog.Logger

	mu       sync.RWMutex
	snap     snapshot.Snapshot
	graph    *graph.Graph
	result   validate.Result
	loadedAt time.Time
}

// NewService creates a service over the dataset root directory.
func NewService(root string, db *index.DB, logger *slog.Logger) *Service {
	return &Service{root: root, db: db, logger: logger}
}

// Reload reads the dataset from disk, rebuilds graph and validation state,
// and replaces the SQLite index. Build and validation errors do not fail
// the reload: they become part of the validation report.
func (s *Service) Reload(_ context.Context) error {
	snap, err := snapshot.FromDir(s.root)
	if err != nil {
		return err
	}

	g, buildErrs := graph.Build(snap)
	result := validate.Snapshot(snap)

	if err := s.db.ReplaceGraph(g); err != nil {
		return err
	}

	s.mu.Lock()
	s.snap = snap
	s.graph = g
	s.result = result
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()

	s.logger.Info("dataset: reloaded",
		slog.String("root", s.root),
		slog.Int("files", len(snap)),
		slog.Int("nodes", len(g.Nodes())),
		slog.Int("build_errors", len(buildErrs)),
		slog.Int("validation_errors", len(result.Errors)))
	return nil
}

// Validate returns the validation report for the currently loaded dataset.
func (s *Service) Validate(ctx context.Context) (ValidationReport, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return ValidationReport{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	errs := s.result.Errors
	if errs == nil {
		errs = []*apperr.Error{}
	}
	return ValidationReport{OK: s.result.OK(), Errors: errs, LoadedAt: s.loadedAt}, nil
}

// Fingerprint computes the dataset fingerprint at the requested scope.
func (s *Service) Fingerprint(ctx context.Context, scope fingerprint.Scope) (string, *apperr.Error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return "", apperr.New(apperr.CodeDirMissing, "", "load dataset: %v", err)
	}
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	return fingerprint.Compute(snap, scope)
}

// GetNode returns one node with its body and adjacency, or apperr.ErrNotFound.
func (s *Service) GetNode(ctx context.Context, id string) (*NodeDetail, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	row, body, err := s.db.GetNode(id)
	if err != nil {
		return nil, err
	}
	links, err := s.db.Links(id)
	if err != nil {
		return nil, err
	}
	backlinks, err := s.db.Backlinks(id)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	s.mu.RLock()
	if n, ok := s.graph.Node(id); ok {
		fields = n.Fields
	}
	s.mu.RUnlock()

	return &NodeDetail{
		ID:        row.ID,
		Kind:      row.Kind,
		TypeID:    row.TypeID,
		RecordID:  row.RecordID,
		File:      row.File,
		Fields:    fields,
		Body:      body,
		Links:     nonNilSlice(links),
		Backlinks: nonNilSlice(backlinks),
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// ListNodes returns nodes filtered by kind and/or type id.
func (s *Service) ListNodes(ctx context.Context, kind, typeID string, limit, offset int) ([]index.NodeRow, int, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, 0, err
	}
	return s.db.ListNodes(kind, typeID, limit, offset)
}

// Links returns outgoing link targets for a node.
func (s *Service) Links(ctx context.Context, id string) ([]string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if _, _, err := s.db.GetNode(id); err != nil {
		return nil, err
	}
	links, err := s.db.Links(id)
	return nonNilSlice(links), err
}

// Backlinks returns the ids of nodes linking to id.
func (s *Service) Backlinks(ctx context.Context, id string) ([]string, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if _, _, err := s.db.GetNode(id); err != nil {
		return nil, err
	}
	back, err := s.db.Backlinks(id)
	return nonNilSlice(back), err
}

// Search runs a full-text search over node bodies.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.db.Search(query, limit)
}

// GraphExport returns all nodes and edges for visualization.
func (s *Service) GraphExport(ctx context.Context) ([]index.NodeRow, []index.GraphLink, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, nil, err
	}
	return s.db.Export()
}

// Blob returns the content of a stored blob by its sha256 digest. The
// bytes are verified against the digest before being returned.
func (s *Service) Blob(ctx context.Context, digest string) ([]byte, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if !blob.IsDigest(digest) {
		return nil, apperr.New(apperr.CodeBlobPathInvalid, "", "malformed blob digest %q", digest)
	}
	s.mu.RLock()
	data, ok := s.snap[blob.CanonicalPath(digest)]
	s.mu.RUnlock()
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if blob.Digest(data) != digest {
		return nil, apperr.New(apperr.CodeBlobDigestMismatch, blob.CanonicalPath(digest),
			"blob content does not match digest %s", digest)
	}
	return data, nil
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.graph != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Reload(ctx)
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
