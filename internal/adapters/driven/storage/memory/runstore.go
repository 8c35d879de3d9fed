package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
// It is used when history is disabled or the database cannot be opened.
type RunStore struct {
	mu      sync.RWMutex
	reports map[string]domain.RunReport
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		reports: make(map[string]domain.RunReport),
	}
}

// Save stores a copy of the report.
func (s *RunStore) Save(_ context.Context, report *domain.RunReport) error {
	if report == nil || report.RunID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.RunID] = copyReport(report)
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, runID string) (*domain.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyReport(&report)
	return &out, nil
}

// List returns summaries newest first. A limit of 0 returns all.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RunSummary, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].RunID > out[j].RunID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a run.
func (s *RunStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[runID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.reports, runID)
	return nil
}

// copyReport detaches the slices so callers cannot mutate stored state.
func copyReport(r *domain.RunReport) domain.RunReport {
	out := *r
	out.Stages = append([]domain.StageTrace(nil), r.Stages...)
	out.Outputs = append([]string(nil), r.Outputs...)
	if r.Failure != nil {
		failure := *r.Failure
		out.Failure = &failure
	}
	return out
}
