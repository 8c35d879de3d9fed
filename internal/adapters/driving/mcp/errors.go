// Package mcp provides an MCP (Model Context Protocol) server adapter for pagegen.
// It lets AI assistants run the page pipeline and inspect templates and past runs.
package mcp

import "errors"

// ErrMissingPipelineService is returned when the pipeline service is not provided.
var ErrMissingPipelineService = errors.New("mcp: pipeline service is required")
