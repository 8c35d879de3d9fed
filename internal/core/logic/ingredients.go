package logic

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

var ingredientDescriptions = []rule{
	{"vitamin c", "A powerful antioxidant that helps protect the skin from environmental damage and promotes collagen production."},
	{"hyaluronic acid", "A naturally occurring molecule that attracts and retains moisture, helping to keep skin hydrated and plump."},
	{"niacinamide", "Also known as Vitamin B3, it helps improve skin texture, minimize pores, and strengthen the skin barrier."},
	{"retinol", "A form of Vitamin A that promotes cell turnover and collagen production for anti-aging benefits."},
	{"salicylic acid", "A beta hydroxy acid (BHA) that penetrates pores to help clear acne and prevent breakouts."},
	{"glycolic acid", "An alpha hydroxy acid (AHA) that exfoliates the skin surface for a smoother, brighter complexion."},
	{"ceramide", "Lipids that help maintain the skin's barrier function and retain moisture."},
	{"peptide", "Amino acid chains that signal the skin to produce more collagen and elastin."},
	{"squalane", "A lightweight, non-comedogenic oil that hydrates and softens the skin."},
	{"zinc", "A mineral that helps control oil production and has anti-inflammatory properties."},
	{"aloe vera", "A soothing plant extract known for its hydrating and calming properties."},
	{"green tea", "Rich in antioxidants, it helps protect against environmental stressors and soothes the skin."},
}

var ingredientBenefits = []rule{
	{"vitamin c", "Brightening & antioxidant protection"},
	{"hyaluronic acid", "Deep hydration & plumping"},
	{"niacinamide", "Pore minimizing & barrier support"},
	{"retinol", "Anti-aging & cell renewal"},
	{"salicylic acid", "Acne control & pore cleansing"},
	{"glycolic acid", "Exfoliation & skin renewal"},
	{"ceramide", "Barrier repair & moisture retention"},
	{"peptide", "Firming & collagen support"},
	{"squalane", "Lightweight hydration"},
	{"zinc", "Oil control & anti-inflammatory"},
	{"aloe vera", "Soothing & hydrating"},
	{"green tea", "Antioxidant protection"},
}

// ingredientCategories is matched in order; the first category with a hit wins.
var ingredientCategories = []struct {
	category string
	keywords []string
}{
	{"antioxidant", []string{"vitamin c", "vitamin e", "green tea", "resveratrol"}},
	{"hydrator", []string{"hyaluronic acid", "glycerin", "squalane", "aloe"}},
	{"exfoliant", []string{"glycolic", "salicylic", "lactic", "aha", "bha"}},
	{"anti-aging", []string{"retinol", "retinoid", "peptide", "collagen"}},
	{"soothing", []string{"chamomile", "centella", "cica"}},
	{"vitamin", []string{"vitamin b", "niacinamide"}},
}

const (
	genericIngredientDescription = "An active ingredient that contributes to the product's effectiveness."
	genericIngredientBenefit     = "Skin health support"
	genericIngredientCategory    = "active"
)

// GenerateIngredients builds the ingredients fragment.
func GenerateIngredients(p domain.Product) domain.IngredientsFragment {
	items := make([]domain.IngredientItem, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		items = append(items, domain.IngredientItem{
			Name:        ing,
			Description: lookup(ingredientDescriptions, ing, genericIngredientDescription),
			Benefit:     lookup(ingredientBenefits, ing, genericIngredientBenefit),
			Category:    categorise(ing),
		})
	}

	return domain.IngredientsFragment{
		Type:           domain.FragmentIngredients,
		Title:          "Key Ingredients",
		ProductName:    productName(p),
		Items:          items,
		Count:          len(items),
		Concentration:  p.DisplayConcentration(),
		HeroIngredient: HeroIngredient(p),
		Summary:        ingredientsSummary(p.Ingredients),
	}
}

// HeroIngredient returns the first listed ingredient, unless a concentration
// is known, in which case the ingredient named in the concentration text or
// the product name is preferred.
func HeroIngredient(p domain.Product) string {
	if len(p.Ingredients) == 0 {
		return domain.NotAvailable
	}
	if p.Concentration.IsKnown() {
		for _, ctx := range []string{p.ConcentrationText, p.Name} {
			lower := strings.ToLower(ctx)
			for _, ing := range p.Ingredients {
				if lower != "" && strings.Contains(lower, strings.ToLower(ing)) {
					return ing
				}
			}
		}
	}
	return p.Ingredients[0]
}

func lookup(rules []rule, s, fallback string) string {
	if v, ok := match(rules, s); ok {
		return v
	}
	return fallback
}

func categorise(ingredient string) string {
	for _, c := range ingredientCategories {
		if containsAny(ingredient, c.keywords...) {
			return c.category
		}
	}
	return genericIngredientCategory
}

func ingredientsSummary(ingredients []string) string {
	switch len(ingredients) {
	case 0:
		return domain.NotAvailable
	case 1:
		return fmt.Sprintf("Powered by %s for targeted skincare benefits.", ingredients[0])
	default:
		return fmt.Sprintf("Formulated with %s for comprehensive skincare benefits.", joinAnd(ingredients))
	}
}
