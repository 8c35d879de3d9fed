package driven

import "github.com/custodia-labs/pagegen/internal/core/domain"

// TemplateSource supplies the page template definitions.
// Definitions are loaded once at startup and never mutated.
type TemplateSource interface {
	// Load returns every template definition.
	Load() ([]domain.TemplateDefinition, error)
}
