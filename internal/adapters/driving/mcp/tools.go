package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// defaultLimit is the number of passages returned by the search tool.
const defaultLimit = domain.DefaultTopK

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Dataset string `json:"dataset" jsonschema:"the dataset id to search"`
	Query   string `json:"query" jsonschema:"the text to find similar passages for"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 6)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved passage.
type SearchResultOutput struct {
	DocumentKey string  `json:"document_key"`
	Source      string  `json:"source"`
	Ordinal     int     `json:"ordinal"`
	Score       float64 `json:"score"`
	Content     string  `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Dataset  string `json:"dataset" jsonschema:"the dataset id to answer from"`
	Question string `json:"question" jsonschema:"the question to answer"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// IngestURLInput is the input schema for the ingest_url tool.
type IngestURLInput struct {
	Dataset string `json:"dataset" jsonschema:"the dataset id to store the page in"`
	URL     string `json:"url" jsonschema:"the page to fetch; https is assumed when no scheme is given"`
}

// IngestURLOutput is the output schema for the ingest_url tool.
type IngestURLOutput struct {
	Passages int    `json:"passages"`
	Message  string `json:"message"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the passages of a dataset most similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the passages stored in a dataset",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_url",
			Description: "Fetch one web page and add its visible text to a dataset",
		}, s.handleIngestURL)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if err := domain.ValidateDatasetID(input.Dataset); err != nil {
		return nil, SearchOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	results, err := s.ports.Search.Search(ctx, domain.CollectionName(input.Dataset), input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentKey: results[i].Metadata.DocumentKey,
			Source:      results[i].Metadata.Source,
			Ordinal:     results[i].Metadata.Ordinal,
			Score:       results[i].Score,
			Content:     results[i].Text,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation. Failures come back as answer text.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if err := domain.ValidateDatasetID(input.Dataset); err != nil {
		return nil, AskOutput{}, err
	}
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	answer := s.ports.Answer.Ask(ctx, domain.CollectionName(input.Dataset), input.Question)
	return nil, AskOutput{Answer: answer}, nil
}

// handleIngestURL handles the ingest_url tool invocation.
// A page with nothing to ingest is reported, not failed.
func (s *Server) handleIngestURL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestURLInput,
) (*mcp.CallToolResult, IngestURLOutput, error) {
	if err := domain.ValidateDatasetID(input.Dataset); err != nil {
		return nil, IngestURLOutput{}, err
	}
	if input.URL == "" {
		return nil, IngestURLOutput{}, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}

	n, err := s.ports.Ingest.IngestURL(ctx, input.Dataset, input.URL)
	switch {
	case errors.Is(err, domain.ErrNoDocuments):
		return nil, IngestURLOutput{Message: "no documents found"}, nil
	case err != nil:
		return nil, IngestURLOutput{}, err
	}

	return nil, IngestURLOutput{
		Passages: n,
		Message:  fmt.Sprintf("stored %d passages", n),
	}, nil
}
