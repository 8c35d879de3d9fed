package driven

import (
	"context"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

// OutputDocument is a rendered page paired with its file name.
type OutputDocument struct {
	Name     string
	Document *domain.Document
}

// DocumentWriter persists the pipeline's output documents.
type DocumentWriter interface {
	// WriteAll writes every document into dir and returns the written paths.
	// It is all-or-nothing: on error no document is left behind.
	WriteAll(ctx context.Context, dir string, docs []OutputDocument) ([]string, error)
}
