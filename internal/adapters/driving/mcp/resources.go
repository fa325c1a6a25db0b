package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for folio resources.
	uriScheme = "folio://"

	pendingURI = uriScheme + "pending"
	intakeURI  = uriScheme + "intake"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         pendingURI,
		Name:        "pending",
		Description: "Intake PDFs waiting for bibliographic metadata",
		MIMEType:    "application/json",
	}, s.handlePendingResource)

	s.server.AddResource(&mcp.Resource{
		URI:         intakeURI,
		Name:        "intake",
		Description: "Every PDF currently in the intake directory",
		MIMEType:    "application/json",
	}, s.handleIntakeResource)
}

// handlePendingResource returns the paths parked in AwaitingMetadata.
func (s *Server) handlePendingResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingestion == nil {
		return jsonResource(req.Params.URI, []string{})
	}
	paths := s.ports.Ingestion.Pending()
	if paths == nil {
		paths = []string{}
	}
	return jsonResource(req.Params.URI, paths)
}

// handleIntakeResource lists the intake directory.
func (s *Server) handleIntakeResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingestion == nil {
		return jsonResource(req.Params.URI, []string{})
	}

	docs, err := s.ports.Ingestion.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing intake: %w", err)
	}

	type docInfo struct {
		Path string `json:"path"`
		Name string `json:"name"`
	}
	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{Path: docs[i].Path, Name: docs[i].Name()}
	}
	return jsonResource(req.Params.URI, infos)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
