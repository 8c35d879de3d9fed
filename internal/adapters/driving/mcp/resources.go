package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for pagegen resources.
	uriScheme = "pagegen://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Templates != nil {
		// Static resource for listing templates.
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "templates",
			Name:        "templates",
			Description: "Names of the loaded page templates",
			MIMEType:    "application/json",
		}, s.handleTemplatesResource)

		// Template for a single definition.
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "templates/{name}",
			Name:        "template-definition",
			Description: "Field mapping of one page template",
			MIMEType:    "application/json",
		}, s.handleTemplateResource)
	}

	if s.ports.History != nil {
		// Template for a stored run report.
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "runs/{runId}",
			Name:        "run-report",
			Description: "Full report of a past pipeline run, including its stage trace",
			MIMEType:    "application/json",
		}, s.handleRunResource)
	}
}

// handleTemplatesResource returns the template names.
func (s *Server) handleTemplatesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Templates.Names())
}

// handleTemplateResource returns one template definition.
func (s *Server) handleTemplateResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract name from URI: pagegen://templates/{name}
	name := extractTrailingID(req.Params.URI, "templates/")
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	def, err := s.ports.Templates.Definition(name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting template: %w", err)
	}
	return jsonResource(req.Params.URI, def)
}

// handleRunResource returns a stored run report.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract runId from URI: pagegen://runs/{runId}
	runID := extractTrailingID(req.Params.URI, "runs/")
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report, err := s.ports.History.Get(ctx, runID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return jsonResource(req.Params.URI, report)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
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

// extractTrailingID extracts the last segment from a URI like pagegen://{collection}{id}.
// Nested paths are rejected.
func extractTrailingID(uri, collection string) string {
	prefix := uriScheme + collection

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
