package driven

import (
	"context"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

// RunStore persists pipeline run reports.
type RunStore interface {
	// Save stores or replaces a run report.
	Save(ctx context.Context, report *domain.RunReport) error

	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	Get(ctx context.Context, runID string) (*domain.RunReport, error)

	// List returns the most recent runs, newest first. A limit of 0 returns all.
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Delete removes a run.
	// Returns domain.ErrNotFound if the run does not exist.
	Delete(ctx context.Context, runID string) error
}
