package driving

import (
	"context"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

// HistoryService exposes past pipeline runs.
type HistoryService interface {
	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Get returns the full report of a run.
	Get(ctx context.Context, runID string) (*domain.RunReport, error)

	// Delete removes a run from history.
	Delete(ctx context.Context, runID string) error
}
