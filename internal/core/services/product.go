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

var errMissingCopy = errors.New("response is missing headline or description")

var productCopySchema = driven.ObjectSchema(map[string]*driven.Schema{
	"headline":                driven.StringSchema(),
	"description":             driven.StringSchema(),
	"ingredients_description": driven.StringSchema(),
	"benefits_description":    driven.StringSchema(),
	"usage_tips":              driven.ArraySchema(driven.StringSchema()),
	"precautions":             driven.ArraySchema(driven.StringSchema()),
}, "headline", "description")

// ProductAgent writes the product page copy and renders the product template.
type ProductAgent struct {
	gen       *Generator
	templates *TemplateEngine
	cfg       AgentConfig
}

// NewProductAgent creates a product page agent.
func NewProductAgent(gen *Generator, templates *TemplateEngine, cfg AgentConfig) *ProductAgent {
	return &ProductAgent{gen: gen, templates: templates, cfg: cfg}
}

// Generate builds the product page.
func (a *ProductAgent) Generate(ctx context.Context, in PageInput) (*domain.Document, error) {
	logger.Section("Product Page Agent")

	p := in.Product
	enhanced := DefaultEnhancement(p)
	if a.cfg.Enhance {
		generated, err := a.enhance(ctx, p)
		if err != nil {
			return nil, err
		}
		enhanced = mergeEnhancement(generated, enhanced)
	}

	return a.templates.Render(domain.PageProduct.String(), domain.Bindings{
		Product: &p,
		Blocks: domain.Blocks{
			Benefits:    in.Blocks.Benefits,
			Usage:       in.Blocks.Usage,
			Safety:      in.Blocks.Safety,
			Ingredients: in.Blocks.Ingredients,
		},
		Enhanced: &enhanced,
		System:   in.System,
	})
}

func (a *ProductAgent) enhance(ctx context.Context, p domain.Product) (domain.ProductEnhancement, error) {
	usage := logic.GenerateUsage(p)
	safety := logic.GenerateSafety(p)

	return generateJSON(ctx, a.gen, generationCall{
		stage:  domain.StageName(domain.StageProductAgent),
		prompt: driven.PromptProductCopy,
		data: productCopyPromptData{
			Product:   newPromptProduct(p),
			Hero:      logic.HeroIngredient(p),
			Frequency: usage.Frequency,
			Warnings:  strings.Join(safety.Warnings, " "),
		},
		schema:      productCopySchema,
		temperature: a.cfg.Temperature,
	}, func(e *domain.ProductEnhancement) error {
		e.Headline = collapse(e.Headline)
		e.Description = collapse(e.Description)
		if e.Headline == "" || e.Description == "" {
			return errMissingCopy
		}
		return nil
	})
}

// DefaultEnhancement derives the product page copy from the content blocks alone.
func DefaultEnhancement(p domain.Product) domain.ProductEnhancement {
	benefits := logic.GenerateBenefits(p)
	ingredients := logic.GenerateIngredients(p)
	usage := logic.GenerateUsage(p)
	safety := logic.GenerateSafety(p)

	headline := p.Name
	switch len(p.Benefits) {
	case 0:
	case 1:
		headline = fmt.Sprintf("%s for %s", p.Name, strings.ToLower(p.Benefits[0]))
	default:
		headline = fmt.Sprintf("%s for %s and %s", p.Name, strings.ToLower(p.Benefits[0]), strings.ToLower(p.Benefits[1]))
	}

	description := strings.TrimSpace(sentence(benefits.Summary) + " " + sentence(ingredients.Summary))
	if description == "" {
		description = fmt.Sprintf("%s is a skincare product.", p.Name)
	}

	return domain.ProductEnhancement{
		Headline:               headline,
		Description:            description,
		IngredientsDescription: ingredients.Summary,
		BenefitsDescription:    benefits.Summary,
		UsageTips:              usage.Tips,
		Precautions:            safety.Precautions,
	}
}

// mergeEnhancement fills the optional fields the LLM left empty.
func mergeEnhancement(generated, fallback domain.ProductEnhancement) domain.ProductEnhancement {
	out := generated
	if strings.TrimSpace(out.IngredientsDescription) == "" {
		out.IngredientsDescription = fallback.IngredientsDescription
	}
	if strings.TrimSpace(out.BenefitsDescription) == "" {
		out.BenefitsDescription = fallback.BenefitsDescription
	}
	out.UsageTips = nonBlank(out.UsageTips)
	if len(out.UsageTips) == 0 {
		out.UsageTips = fallback.UsageTips
	}
	out.Precautions = nonBlank(out.Precautions)
	if len(out.Precautions) == 0 {
		out.Precautions = fallback.Precautions
	}
	return out
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = collapse(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
