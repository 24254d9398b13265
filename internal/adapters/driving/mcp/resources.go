package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for sercha-rag resources.
	uriScheme = "sercha-rag://"
)

// datasetInfo is the JSON shape of a stored dataset.
type datasetInfo struct {
	ID        string `json:"id"`
	Model     string `json:"model,omitempty"`
	Passages  int    `json:"passages"`
	Documents int    `json:"documents"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "datasets",
		Name:        "datasets",
		Description: "Stored datasets with passage and document counts",
		MIMEType:    "application/json",
	}, s.handleDatasetsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "datasets/{datasetId}",
		Name:        "dataset",
		Description: "Passage and document counts of one dataset",
		MIMEType:    "application/json",
	}, s.handleDatasetResource)
}

// handleDatasetsResource lists stored datasets.
func (s *Server) handleDatasetsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos, err := s.datasets(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(req.Params.URI, infos)
}

// handleDatasetResource describes one dataset.
func (s *Server) handleDatasetResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractDatasetID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	infos, err := s.datasets(ctx)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.ID == id {
			return jsonResult(req.Params.URI, info)
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func (s *Server) datasets(ctx context.Context) ([]datasetInfo, error) {
	infos := []datasetInfo{}
	if s.ports.Dataset == nil {
		return infos, nil
	}

	collections, err := s.ports.Dataset.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	for _, c := range collections {
		id, ok := domain.DatasetIDFromCollection(c.Name)
		if !ok {
			continue
		}
		infos = append(infos, datasetInfo{ID: id, Model: c.Model, Passages: c.Passages, Documents: c.Documents})
	}
	return infos, nil
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDatasetID extracts the dataset ID from a URI like sercha-rag://datasets/{datasetId}.
func extractDatasetID(uri string) string {
	const prefix = uriScheme + "datasets/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
