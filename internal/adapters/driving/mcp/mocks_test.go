package mcp

import (
	"context"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
)

// mockPipelineService returns a canned report and records the request.
type mockPipelineService struct {
	report *domain.RunReport
	err    error
	req    driving.RunRequest
}

func (m *mockPipelineService) Run(_ context.Context, req driving.RunRequest) (*domain.RunReport, error) {
	m.req = req
	return m.report, m.err
}

// mockTemplateService serves fixed definitions.
type mockTemplateService struct {
	defs map[string]domain.TemplateDefinition
}

func (m *mockTemplateService) Names() []string {
	names := make([]string, 0, len(m.defs))
	for _, n := range []string{"comparison", "faq", "product"} {
		if _, ok := m.defs[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

func (m *mockTemplateService) Definition(name string) (domain.TemplateDefinition, error) {
	def, ok := m.defs[name]
	if !ok {
		return domain.TemplateDefinition{}, domain.ErrNotFound
	}
	return def, nil
}

func (m *mockTemplateService) Render(_ string, _ domain.Bindings) (*domain.Document, error) {
	return domain.NewDocument(), nil
}

// mockHistoryService serves fixed runs.
type mockHistoryService struct {
	runs      map[string]*domain.RunReport
	listErr   error
	lastLimit int
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.RunSummary, error) {
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.RunSummary, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r.Summary())
	}
	return out, nil
}

func (m *mockHistoryService) Get(_ context.Context, runID string) (*domain.RunReport, error) {
	r, ok := m.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockHistoryService) Delete(_ context.Context, _ string) error {
	return nil
}
