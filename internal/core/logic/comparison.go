package logic

import (
	"fmt"
	"math"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

// Winner values.
const (
	WinnerTie = "tie"
)

// CompareProducts compares a against b. Scores are from a's point of view,
// so CompareProducts(b, a) yields the same keys with every score negated.
func CompareProducts(a, b domain.Product) domain.ComparisonFragment {
	nameA, nameB := a.Name, b.Name
	if nameA == "" {
		nameA = "Product A"
	}
	if nameB == "" {
		nameB = "Product B"
	}

	ingredients := compareIngredients(a, b)
	benefits := compareBenefits(a, b)
	price := comparePrice(a, b)
	skin := compareSkinTypes(a, b)

	scores := domain.ComparisonScores{
		Ingredients: sign(float64(len(a.Ingredients) - len(b.Ingredients))),
		Benefits:    sign(float64(len(a.Benefits) - len(b.Benefits))),
		SkinType:    sign(float64(len(a.SkinTypes) - len(b.SkinTypes))),
	}
	if pa, ok := a.Price.Value(); ok {
		if pb, ok := b.Price.Value(); ok {
			scores.Price = sign(pb - pa)
		}
	}
	scores.Overall = sign(float64(scores.Ingredients + scores.Benefits + scores.Price + scores.SkinType))

	winner := WinnerTie
	switch scores.Overall {
	case 1:
		winner = domain.SideProductA
	case -1:
		winner = domain.SideProductB
	}

	return domain.ComparisonFragment{
		Type:     domain.FragmentComparison,
		Title:    "Product Comparison",
		Products: domain.ComparedProducts{ProductA: nameA, ProductB: nameB},
		Dimensions: domain.ComparisonDimensions{
			Ingredients: ingredients,
			Benefits:    benefits,
			Price:       price,
			SkinType:    skin,
		},
		Scores:  scores,
		Winner:  winner,
		Summary: comparisonSummary(nameA, nameB, winner),
	}
}

func compareIngredients(a, b domain.Product) domain.IngredientsDimension {
	common, onlyA, onlyB := setDiff(a.Ingredients, b.Ingredients)

	analysis := "Limited ingredient overlap between products."
	switch {
	case len(common) > 0:
		analysis = fmt.Sprintf("Products share %d common ingredient(s), suggesting similar formulation approaches.", len(common))
	case len(onlyA) > 0 && len(onlyB) > 0:
		analysis = "Products have completely different ingredient profiles, catering to different skincare needs."
	}

	return domain.IngredientsDimension{
		ProductA:  domain.IngredientSide{Ingredients: cloneStrings(a.Ingredients), Count: len(a.Ingredients), Concentration: a.DisplayConcentration()},
		ProductB:  domain.IngredientSide{Ingredients: cloneStrings(b.Ingredients), Count: len(b.Ingredients), Concentration: b.DisplayConcentration()},
		Common:    common,
		UniqueToA: onlyA,
		UniqueToB: onlyB,
		Analysis:  analysis,
	}
}

func compareBenefits(a, b domain.Product) domain.BenefitsDimension {
	common, onlyA, onlyB := setDiff(a.Benefits, b.Benefits)

	analysis := "Products offer different benefits and may serve different skincare goals."
	if len(common) > 0 {
		analysis = fmt.Sprintf("Both products offer %d similar benefit(s), making them comparable choices.", len(common))
	}

	return domain.BenefitsDimension{
		ProductA:  domain.BenefitSide{Benefits: cloneStrings(a.Benefits), Count: len(a.Benefits)},
		ProductB:  domain.BenefitSide{Benefits: cloneStrings(b.Benefits), Count: len(b.Benefits)},
		Common:    common,
		UniqueToA: onlyA,
		UniqueToB: onlyB,
		Analysis:  analysis,
	}
}

func comparePrice(a, b domain.Product) domain.PriceDimension {
	dim := domain.PriceDimension{
		ProductA:             domain.PriceSide{Price: a.Price, Formatted: a.DisplayPrice()},
		ProductB:             domain.PriceSide{Price: b.Price, Formatted: b.DisplayPrice()},
		Difference:           domain.UnknownQuantity(),
		PercentageDifference: domain.UnknownQuantity(),
		Analysis:             "Price comparison not available.",
	}

	pa, okA := a.Price.Value()
	pb, okB := b.Price.Value()
	if !okA || !okB {
		return dim
	}

	diff := math.Abs(pa - pb)
	dim.Difference = domain.KnownQuantity(diff)
	if hi := math.Max(pa, pb); hi > 0 {
		dim.PercentageDifference = domain.KnownQuantity(math.Round(diff/hi*1000) / 10)
	} else {
		dim.PercentageDifference = domain.KnownQuantity(0)
	}

	switch {
	case pa < pb:
		dim.CheaperOption = domain.SideProductA
		dim.Analysis = "Product A offers a more budget-friendly option."
	case pb < pa:
		dim.CheaperOption = domain.SideProductB
		dim.Analysis = "Product B offers a more budget-friendly option."
	default:
		dim.Analysis = "Both products are priced equally, so choice can be based on other factors."
	}
	return dim
}

func compareSkinTypes(a, b domain.Product) domain.SkinTypeDimension {
	common, _, _ := setDiff(a.SkinTypes, b.SkinTypes)

	analysis := "Products target different skin types."
	if len(common) > 0 {
		analysis = fmt.Sprintf("Both products target %d common skin type(s).", len(common))
	}

	return domain.SkinTypeDimension{
		ProductA: cloneStrings(a.SkinTypes),
		ProductB: cloneStrings(b.SkinTypes),
		Common:   common,
		Analysis: analysis,
	}
}

func comparisonSummary(nameA, nameB, winner string) string {
	switch winner {
	case domain.SideProductA:
		return fmt.Sprintf("%s edges ahead in this comparison based on ingredients, benefits, price and skin type coverage.", nameA)
	case domain.SideProductB:
		return fmt.Sprintf("%s edges ahead in this comparison based on ingredients, benefits, price and skin type coverage.", nameB)
	default:
		return fmt.Sprintf("%s and %s are closely matched products. Your choice may depend on specific preferences and skin needs.", nameA, nameB)
	}
}
