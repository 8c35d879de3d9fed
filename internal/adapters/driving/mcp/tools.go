package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
)

// defaultRunLimit is used when list_runs is called without a limit.
const defaultRunLimit = 10

// GenerateInput is the input schema for the generate_pages tool.
type GenerateInput struct {
	Product   map[string]any `json:"product" jsonschema:"the raw product record: product_name (required), concentration, skin_type, key_ingredients, benefits, how_to_use, side_effects, price"`
	OutputDir string         `json:"output_dir,omitempty" jsonschema:"directory to write faq.json, product_page.json and comparison_page.json (default from settings)"`
	Label     string         `json:"label,omitempty" jsonschema:"name recorded for this input in run history (default mcp)"`
}

// GenerateOutput is the output schema for the generate_pages tool.
type GenerateOutput struct {
	RunID   string         `json:"run_id"`
	Status  string         `json:"status"`
	Outputs []string       `json:"outputs,omitempty"`
	Stages  []StageOutput  `json:"stages"`
	Failure *FailureOutput `json:"failure,omitempty"`
}

// StageOutput is one stage of the run trace.
type StageOutput struct {
	Number     int    `json:"number"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// FailureOutput describes why a run stopped.
type FailureOutput struct {
	Stage   int    `json:"stage"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

// ListRunsInput is the input schema for the list_runs tool.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return, newest first (default 10)"`
}

// ListRunsOutput is the output schema for the list_runs tool.
type ListRunsOutput struct {
	Runs  []domain.RunSummary `json:"runs"`
	Count int                 `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_pages",
		Description: "Generate the FAQ, product and comparison JSON pages for a product record",
	}, s.handleGenerate)

	if s.ports.History != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_runs",
			Description: "List recent pipeline runs with their outcome",
		}, s.handleListRuns)
	}
}

// handleGenerate runs the pipeline. A stage failure is reported as a tool
// error carrying the full trace rather than as a protocol error.
func (s *Server) handleGenerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	if len(input.Product) == 0 {
		return nil, GenerateOutput{}, fmt.Errorf("%w: product is required", domain.ErrInvalidInput)
	}
	label := input.Label
	if label == "" {
		label = "mcp"
	}

	report, err := s.ports.Pipeline.Run(ctx, driving.RunRequest{
		Input:     label,
		Product:   domain.RawProduct(input.Product),
		OutputDir: input.OutputDir,
	})
	if report == nil {
		return nil, GenerateOutput{}, err
	}

	output := reportOutput(report)
	if err != nil {
		var stageErr *domain.StageError
		msg := err.Error()
		if errors.As(err, &stageErr) {
			msg = fmt.Sprintf("%v (hint: %s)", stageErr, stageErr.Hint())
		}
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		}, output, nil
	}
	return nil, output, nil
}

// handleListRuns returns recent run summaries.
func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}

	runs, err := s.ports.History.List(ctx, limit)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}
	return nil, ListRunsOutput{Runs: runs, Count: len(runs)}, nil
}

func reportOutput(report *domain.RunReport) GenerateOutput {
	out := GenerateOutput{
		RunID:   report.RunID,
		Status:  string(report.Status),
		Outputs: report.Outputs,
		Stages:  make([]StageOutput, len(report.Stages)),
	}
	for i, st := range report.Stages {
		out.Stages[i] = StageOutput{
			Number:     st.Number,
			Name:       st.Name,
			Status:     string(st.Status),
			Detail:     st.Detail,
			DurationMS: st.Duration.Milliseconds(),
			Error:      st.Error,
		}
	}
	if f := report.Failure; f != nil {
		out.Failure = &FailureOutput{
			Stage: f.Stage,
			Name:  f.Name,
			Kind:  string(f.Kind),
			Hint:  f.Hint(),
		}
		if f.Err != nil {
			out.Failure.Message = f.Err.Error()
		}
	}
	return out
}
