package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/logic"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/logger"
)

var errSameProduct = errors.New("competitor has the same name as the product")

var competitorSchema = driven.ObjectSchema(map[string]*driven.Schema{
	domain.FieldProductName:    driven.StringSchema(),
	domain.FieldConcentration:  driven.StringSchema(),
	domain.FieldSkinType:       driven.ArraySchema(driven.StringSchema()),
	domain.FieldKeyIngredients: driven.ArraySchema(driven.StringSchema()),
	domain.FieldBenefits:       driven.ArraySchema(driven.StringSchema()),
	domain.FieldHowToUse:       driven.StringSchema(),
	domain.FieldSideEffects:    driven.StringSchema(),
	domain.FieldPrice:          driven.StringSchema(),
}, domain.FieldProductName, domain.FieldKeyIngredients, domain.FieldBenefits, domain.FieldPrice)

// ComparisonAgent synthesises a fictional competitor, compares it with the
// product and renders the comparison template.
type ComparisonAgent struct {
	gen       *Generator
	templates *TemplateEngine
	parser    *ProductParser
	cfg       AgentConfig
}

// NewComparisonAgent creates a comparison page agent.
func NewComparisonAgent(gen *Generator, templates *TemplateEngine, parser *ProductParser, cfg AgentConfig) *ComparisonAgent {
	return &ComparisonAgent{gen: gen, templates: templates, parser: parser, cfg: cfg}
}

// Generate builds the comparison page.
func (a *ComparisonAgent) Generate(ctx context.Context, in PageInput) (*domain.Document, error) {
	logger.Section("Comparison Agent")

	p := in.Product
	competitor, err := a.Competitor(ctx, p)
	if err != nil {
		return nil, err
	}
	logger.Debug("Synthesised competitor %q", competitor.Name)

	fragment := logic.CompareProducts(p, competitor)
	rec := Recommend(p, competitor, fragment)

	return a.templates.Render(domain.PageComparison.String(), domain.Bindings{
		Product:        &p,
		ProductB:       &competitor,
		Blocks:         domain.Blocks{Comparison: &fragment},
		Recommendation: &rec,
		System:         in.System,
	})
}

// Competitor asks the LLM for a fictional product comparable to p. The
// response must name a different product and pass the parser; the result
// is always marked fictional.
func (a *ComparisonAgent) Competitor(ctx context.Context, p domain.Product) (domain.Product, error) {
	currency := p.Currency
	if currency == "" {
		currency = "the same currency as Product A"
	}

	var competitor domain.Product
	_, err := generateJSON(ctx, a.gen, generationCall{
		stage:  domain.StageName(domain.StageComparisonAgent),
		prompt: driven.PromptCompetitor,
		data: competitorPromptData{
			Product:  newPromptProduct(p),
			Currency: currency,
		},
		schema:      competitorSchema,
		temperature: a.cfg.Temperature,
	}, func(raw *domain.RawProduct) error {
		parsed, err := a.parser.Parse(*raw)
		if err != nil {
			return err
		}
		if strings.EqualFold(parsed.Name, p.Name) {
			return errSameProduct
		}
		competitor = parsed
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	competitor.Fictional = true
	if competitor.Currency == "" && competitor.Price.IsKnown() {
		competitor.Currency = p.Currency
	}
	return competitor, nil
}

// Recommend derives the comparison verdict from the fragment alone.
func Recommend(a, b domain.Product, c domain.ComparisonFragment) domain.Recommendation {
	best := domain.NotAvailable
	switch c.Dimensions.Price.CheaperOption {
	case domain.SideProductA:
		best = a.Name
	case domain.SideProductB:
		best = b.Name
	}

	var note string
	switch c.Winner {
	case domain.SideProductA:
		note = fmt.Sprintf("%s scores higher across the compared dimensions and is the stronger overall choice.", a.Name)
	case domain.SideProductB:
		note = fmt.Sprintf("%s scores higher across the compared dimensions, though it is a fictional product shown for illustration.", b.Name)
	default:
		note = "Both products are closely matched. Choose based on your skin type and budget."
	}

	return domain.Recommendation{
		BestForValue: best,
		Note:         note,
		Disclaimer:   domain.FictionalDisclaimer,
	}
}
