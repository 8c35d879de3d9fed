package logic

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

const genericBenefitDescription = "Contributes to overall skin health and appearance."

var benefitRules = []rule{
	{"fades dark spots", "Targets hyperpigmentation and helps reduce the appearance of dark spots over time."},
	{"dark spot", "Targets hyperpigmentation and helps reduce the appearance of dark spots over time."},
	{"hydrat", "Provides deep moisture to keep skin plump and hydrated."},
	{"anti-aging", "Helps reduce the appearance of fine lines and wrinkles."},
	{"smoothing", "Helps refine skin texture for a smoother appearance."},
	{"firming", "Supports skin elasticity and firmness."},
	{"soothing", "Calms and comforts irritated or sensitive skin."},
	{"pore", "Helps reduce the appearance of enlarged pores."},
	{"acne", "Helps prevent and treat acne breakouts."},
	{"oil control", "Helps regulate excess sebum production."},
}

// GenerateBenefits builds the benefits fragment.
func GenerateBenefits(p domain.Product) domain.BenefitsFragment {
	items := make([]domain.BenefitItem, 0, len(p.Benefits))
	for _, b := range p.Benefits {
		items = append(items, domain.BenefitItem{
			Benefit:     b,
			Description: benefitDescription(b, p.Ingredients),
		})
	}

	return domain.BenefitsFragment{
		Type:        domain.FragmentBenefits,
		Title:       "Key Benefits",
		ProductName: productName(p),
		Items:       items,
		Count:       len(items),
		Summary:     benefitsSummary(productName(p), p.Benefits),
	}
}

func benefitDescription(benefit string, ingredients []string) string {
	if containsAny(benefit, "brighten") {
		if len(ingredients) == 0 {
			return "Helps illuminate and even out skin tone using active ingredients."
		}
		return fmt.Sprintf("Helps illuminate and even out skin tone using %s.", joinAnd(ingredients))
	}
	if desc, ok := match(benefitRules, benefit); ok {
		return desc
	}
	return genericBenefitDescription
}

func benefitsSummary(name string, benefits []string) string {
	switch len(benefits) {
	case 0:
		return domain.NotAvailable
	case 1:
		return fmt.Sprintf("%s focuses on %s for improved skin appearance.", name, strings.ToLower(benefits[0]))
	default:
		return fmt.Sprintf("%s offers multiple benefits including %s.", name, joinAnd(lowerAll(benefits)))
	}
}
