// Package domain defines the core business entities for pagegen.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawProduct: The product record exactly as supplied by the caller
//   - Product: The canonical, validated product every stage consumes
//   - QuestionSet: Categorised user questions about a product
//   - Fragments: Structured content blocks produced by the logic transforms
//   - TemplateDefinition: A declarative mapping from bindings to a page
//   - Document: A rendered output page
//   - RunReport: The per-stage trace of one pipeline run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
