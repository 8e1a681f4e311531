package api

import (
	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/datasetservice"
	"github.com/johnbenac/graphdown/internal/index"
)

// NodeDetail is the full node response type (aliased from the domain layer).
type NodeDetail = datasetservice.NodeDetail

// ValidationReport is the validation response type (aliased from the domain layer).
type ValidationReport = datasetservice.ValidationReport

// NodeListResponse wraps paginated node listings.
type NodeListResponse struct {
	Nodes []index.NodeRow `json:"nodes" validate:"required"`
	Total int             `json:"total" example:"42" validate:"required"`
}

// FingerprintResponse is the dataset fingerprint at one scope.
type FingerprintResponse struct {
	Scope string `json:"scope" example:"snapshot" validate:"required"`
	Hash  string `json:"hash" example:"9a0364b9e99b..." validate:"required"`
}

// LinksResponse wraps a node adjacency listing.
type LinksResponse struct {
	ID    string   `json:"id" validate:"required"`
	Links []string `json:"links" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// GraphResponse wraps the full dataset graph.
type GraphResponse struct {
	Nodes []index.NodeRow   `json:"nodes" validate:"required"`
	Links []index.GraphLink `json:"links" validate:"required"`
}

// datasetErrResponse is the response body for dataset-level failures that
// carry a structured error value.
type datasetErrResponse struct {
	Error *apperr.Error `json:"error"`
}
