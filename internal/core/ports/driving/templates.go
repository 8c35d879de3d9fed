package driving

import "github.com/custodia-labs/pagegen/internal/core/domain"

// TemplateService renders and describes page templates.
type TemplateService interface {
	// Names returns the loaded template names in sorted order.
	Names() []string

	// Definition returns the named template.
	// Returns domain.ErrNotFound if no template has that name.
	Definition(name string) (domain.TemplateDefinition, error)

	// Render applies the named template to bindings.
	Render(name string, bindings domain.Bindings) (*domain.Document, error)
}
