package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides raw passage retrieval.
	Search driving.SearchService

	// Answer provides grounded answers.
	Answer driving.AnswerService

	// Ingest stores fetched pages. Optional; without it ingest_url is not offered.
	Ingest driving.IngestService

	// Dataset lists stored datasets. Optional.
	Dataset driving.DatasetService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
