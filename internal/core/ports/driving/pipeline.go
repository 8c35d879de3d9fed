package driving

import (
	"context"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

// RunRequest describes one pipeline run.
type RunRequest struct {
	// Input labels where the product came from, e.g. a file path. Used in reports only.
	Input string

	// Product is the raw product record.
	Product domain.RawProduct

	// OutputDir overrides the configured output directory when non-empty.
	OutputDir string
}

// PipelineService turns a raw product into the three output pages.
type PipelineService interface {
	// Run executes every stage in order and writes the outputs.
	// The report is always returned, including on failure, so the per-stage
	// trace is available. The error is a *domain.StageError on stage failure.
	Run(ctx context.Context, req RunRequest) (*domain.RunReport, error)
}
