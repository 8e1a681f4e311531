package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/blob"
	"github.com/johnbenac/graphdown/internal/datasetservice"
	"github.com/johnbenac/graphdown/internal/fingerprint"
	"github.com/johnbenac/graphdown/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	svc *datasetservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *datasetservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Validate handles GET /api/dataset/validate.
//
//	@Summary		Validate the loaded dataset
//	@Tags			dataset
//	@Produce		json
//	@Success		200	{object}	ValidationReport
//	@Security		BearerAuth
//	@Router			/dataset/validate [get]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Validate(r.Context())
	if err != nil {
		slog.Error("validate failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Fingerprint handles GET /api/dataset/fingerprint.
//
//	@Summary		Compute the dataset fingerprint
//	@Tags			dataset
//	@Produce		json
//	@Param			scope	query		string	false	"Digest scope"	Enums(schema, snapshot)
//	@Success		200		{object}	FingerprintResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	datasetErrResponse
//	@Security		BearerAuth
//	@Router			/dataset/fingerprint [get]
func (h *Handler) Fingerprint(w http.ResponseWriter, r *http.Request) {
	scope := fingerprint.Scope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = fingerprint.ScopeSnapshot
	}
	hash, ferr := h.svc.Fingerprint(r.Context(), scope)
	if ferr != nil {
		if ferr.Code == apperr.CodeUsage {
			writeJSON(w, http.StatusBadRequest, errorBody(ferr.Message))
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, datasetErrResponse{Error: ferr})
		return
	}
	writeJSON(w, http.StatusOK, FingerprintResponse{Scope: string(scope), Hash: hash})
}

// Reload handles POST /api/dataset/reload.
//
//	@Summary		Reload the dataset from disk
//	@Tags			dataset
//	@Produce		json
//	@Success		200	{object}	ValidationReport
//	@Security		BearerAuth
//	@Router			/dataset/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reload(r.Context()); err != nil {
		slog.Error("reload failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	report, err := h.svc.Validate(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListNodes handles GET /api/nodes.
//
//	@Summary		List graph nodes with optional filtering
//	@Tags			nodes
//	@Produce		json
//	@Param			kind	query		string	false	"Filter by kind"	Enums(type, record, dataset)
//	@Param			type	query		string	false	"Filter by record type id"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	NodeListResponse
//	@Security		BearerAuth
//	@Router			/nodes [get]
func (h *Handler) ListNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	rows, total, err := h.svc.ListNodes(r.Context(), q.Get("kind"), q.Get("type"), limit, offset)
	if err != nil {
		slog.Error("list nodes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if rows == nil {
		rows = []index.NodeRow{}
	}
	writeJSON(w, http.StatusOK, NodeListResponse{Nodes: rows, Total: total})
}

// GetNode handles GET /api/nodes/{id}.
//
//	@Summary		Get a single node by id
//	@Tags			nodes
//	@Produce		json
//	@Param			id	path		string	true	"Node id"
//	@Success		200	{object}	NodeDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{id} [get]
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail, err := h.svc.GetNode(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get node failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Links handles GET /api/nodes/{id}/links.
//
//	@Summary		List ids a node links to
//	@Tags			nodes
//	@Produce		json
//	@Param			id	path		string	true	"Node id"
//	@Success		200	{object}	LinksResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{id}/links [get]
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	h.adjacency(w, r, h.svc.Links)
}

// Backlinks handles GET /api/nodes/{id}/backlinks.
//
//	@Summary		List ids of nodes linking to a node
//	@Tags			nodes
//	@Produce		json
//	@Param			id	path		string	true	"Node id"
//	@Success		200	{object}	LinksResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{id}/backlinks [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	h.adjacency(w, r, h.svc.Backlinks)
}

func (h *Handler) adjacency(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, id string) ([]string, error)) {
	id := chi.URLParam(r, "id")
	links, err := fetch(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("links failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{ID: id, Links: links})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across record bodies
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the full dataset graph
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, links, err := h.svc.GraphExport(r.Context())
	if err != nil {
		slog.Error("graph failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if nodes == nil {
		nodes = []index.NodeRow{}
	}
	if links == nil {
		links = []index.GraphLink{}
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Links: links})
}

// Blob handles GET /api/blobs/{digest}.
//
//	@Summary		Download a stored blob by sha256 digest
//	@Tags			blobs
//	@Produce		octet-stream
//	@Param			digest	path	string	true	"Hex sha256 digest"
//	@Success		200		{file}	binary
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/blobs/{digest} [get]
func (h *Handler) Blob(w http.ResponseWriter, r *http.Request) {
	digest := chi.URLParam(r, "digest")
	if !blob.IsDigest(digest) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid digest"))
		return
	}
	data, err := h.svc.Blob(r.Context(), digest)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("blob failed", slog.String("digest", digest), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("ETag", `"`+digest+`"`)
	_, _ = w.Write(data)
}
