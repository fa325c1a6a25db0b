package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SearchInput is the input schema for the search_library tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"free-text question or topic to look up in the library"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default: all retrieved, at most 10)"`
}

// SearchOutput is the output schema for the search_library tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput is one retrieved passage.
type SearchResultOutput struct {
	Contents      string  `json:"contents"`
	Citation      string  `json:"citation"`
	Source        string  `json:"source"`
	Authors       string  `json:"authors,omitempty"`
	Publisher     string  `json:"publisher,omitempty"`
	DatePublished string  `json:"date_published,omitempty"`
	Page          string  `json:"page"`
	Distance      float64 `json:"distance"`
}

// SubmitMetadataInput is the input schema for the submit_metadata tool.
type SubmitMetadataInput struct {
	Path          string `json:"path" jsonschema:"intake path or file name of the pending PDF"`
	Title         string `json:"title" jsonschema:"document title (required)"`
	Authors       string `json:"authors,omitempty" jsonschema:"authors as they should appear in citations"`
	Publisher     string `json:"publisher,omitempty"`
	DatePublished string `json:"date_published,omitempty" jsonschema:"publication date, e.g. 2020"`
}

// SubmitMetadataOutput is the output schema for the submit_metadata tool.
type SubmitMetadataOutput struct {
	Path        string `json:"path"`
	ArchiveName string `json:"archive_name"`
}

// PendingOutput lists the documents waiting for metadata.
type PendingOutput struct {
	Paths []string `json:"paths"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_library",
		Description: "Search the research library and return cited passages, best match first",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_pending",
		Description: "List intake PDFs waiting for bibliographic metadata",
	}, s.handleListPending)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "submit_metadata",
		Description: "Provide title, authors, publisher and date for a pending intake PDF",
	}, s.handleSubmitMetadata)
}

// handleSearch handles the search_library tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results := s.ports.Retrieval.Query(ctx, input.Query)
	if input.Limit > 0 && len(results) > input.Limit {
		results = results[:input.Limit]
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = SearchResultOutput{
			Contents:      r.Record.Contents,
			Citation:      r.Citation,
			Source:        r.Record.Source,
			Authors:       r.Record.Authors,
			Publisher:     r.Record.Publisher,
			DatePublished: r.Record.DatePublished,
			Page:          r.Record.Page,
			Distance:      r.Record.Distance,
		}
	}

	return nil, output, nil
}

// handleListPending handles the list_pending tool invocation.
func (s *Server) handleListPending(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, PendingOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, PendingOutput{}, ErrIngestionUnavailable
	}
	paths := s.ports.Ingestion.Pending()
	if paths == nil {
		paths = []string{}
	}
	return nil, PendingOutput{Paths: paths}, nil
}

// handleSubmitMetadata handles the submit_metadata tool invocation.
func (s *Server) handleSubmitMetadata(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SubmitMetadataInput,
) (*mcp.CallToolResult, SubmitMetadataOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, SubmitMetadataOutput{}, ErrIngestionUnavailable
	}

	path, err := s.resolvePending(input.Path)
	if err != nil {
		return nil, SubmitMetadataOutput{}, err
	}

	meta := domain.DocumentMetadata{
		Title:         input.Title,
		Authors:       input.Authors,
		Publisher:     input.Publisher,
		DatePublished: input.DatePublished,
	}
	if err := s.ports.Ingestion.SubmitMetadata(ctx, path, meta); err != nil {
		return nil, SubmitMetadataOutput{}, err
	}

	return nil, SubmitMetadataOutput{Path: path, ArchiveName: meta.ArchiveName()}, nil
}

// resolvePending matches a full path or a bare file name against the
// documents currently waiting for metadata.
func (s *Server) resolvePending(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}
	pending := s.ports.Ingestion.Pending()
	clean := filepath.Clean(name)
	for _, p := range pending {
		if p == clean || filepath.Base(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s is not waiting for metadata: %w", name, domain.ErrNotFound)
}
