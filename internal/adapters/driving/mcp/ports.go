package mcp

import (
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Pipeline runs the product pipeline.
	Pipeline driving.PipelineService

	// Templates describes the loaded page templates.
	Templates driving.TemplateService

	// History exposes past runs.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Pipeline == nil {
		return ErrMissingPipelineService
	}
	// Templates and History are optional
	return nil
}
