package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService exposes stored run reports.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a history service over a run store.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// List returns the most recent runs, newest first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	return s.runs.List(ctx, limit)
}

// Get returns the full report of a run.
func (s *HistoryService) Get(ctx context.Context, runID string) (*domain.RunReport, error) {
	if runID == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	return s.runs.Get(ctx, runID)
}

// Delete removes a run from history.
func (s *HistoryService) Delete(ctx context.Context, runID string) error {
	if runID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	return s.runs.Delete(ctx, runID)
}
