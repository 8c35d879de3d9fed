package logic

import (
	"strings"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

// PatchTestPrecaution is added whenever sensitive skin is mentioned.
const PatchTestPrecaution = "Those with sensitive skin should perform a patch test first."

var sideEffectRules = []rule{
	{"tingling", "Tingling sensation"},
	{"redness", "Skin redness"},
	{"irritation", "Skin irritation"},
	{"dryness", "Dryness"},
	{"peeling", "Skin peeling"},
	{"sensitivity", "Increased sensitivity"},
	{"burning", "Burning sensation"},
	{"itching", "Itching"},
}

var generalPrecautions = []string{
	"For external use only.",
	"Avoid contact with eyes.",
	"Keep out of reach of children.",
	"Store in a cool, dry place away from direct sunlight.",
}

var (
	photosensitisingActives = []string{"glycolic", "salicylic", "lactic", "mandelic", "aha", "bha", "retin"}
	patchTestActives        = []string{"vitamin c", "retinol", "glycolic", "salicylic", "aha", "bha"}
	concerningTerms         = []string{"severe", "allergic", "reaction", "medical", "condition"}
)

// GenerateSafety builds the safety fragment.
func GenerateSafety(p domain.Product) domain.SafetyFragment {
	ingredients := strings.Join(p.Ingredients, " ")
	sensitive := containsAny(p.SideEffects, "sensitive") || containsAny(strings.Join(p.SkinTypes, " "), "sensitive")

	return domain.SafetyFragment{
		Type:        domain.FragmentSafety,
		Title:       "Safety Information",
		ProductName: productName(p),
		SideEffects: domain.SideEffects{
			Description: nonEmpty(p.SideEffects),
			Severity:    severity(p.SideEffects),
			Details:     sideEffectDetails(p.SideEffects),
		},
		Warnings:             warnings(p),
		Precautions:          precautions(sensitive),
		PatchTestRecommended: sensitive || containsAny(ingredients, patchTestActives...) || strings.TrimSpace(p.SideEffects) != "",
		ConsultationAdvised:  containsAny(p.SideEffects, concerningTerms...),
	}
}

func sideEffectDetails(text string) []domain.SideEffectDetail {
	details := []domain.SideEffectDetail{}
	if strings.TrimSpace(text) == "" {
		return details
	}

	likelihood := "common"
	if containsAny(text, "mild") {
		likelihood = "possible"
	}
	lower := strings.ToLower(text)
	for _, r := range sideEffectRules {
		if strings.Contains(lower, r.keyword) {
			details = append(details, domain.SideEffectDetail{Effect: r.value, Likelihood: likelihood})
		}
	}
	if len(details) == 0 {
		details = append(details, domain.SideEffectDetail{Effect: strings.TrimSpace(text), Likelihood: "as described"})
	}
	return details
}

func severity(text string) string {
	switch {
	case strings.TrimSpace(text) == "":
		return domain.SeverityNoneReported
	case containsAny(text, "severe", "serious", "dangerous"):
		return domain.SeverityHigh
	case containsAny(text, "moderate", "significant"):
		return domain.SeverityModerate
	case containsAny(text, "mild", "slight", "minor"):
		return domain.SeverityMild
	default:
		return domain.SeverityLow
	}
}

func warnings(p domain.Product) []string {
	var out []string
	ingredients := strings.Join(p.Ingredients, " ")

	if containsAny(ingredients, "vitamin c", "ascorbic") {
		out = append(out, "Avoid using with other Vitamin C products to prevent irritation.")
		if c, ok := p.Concentration.Value(); ok && c > 15 {
			out = append(out, "High concentration formula - start with less frequent application.")
		}
	}
	if containsAny(ingredients, photosensitisingActives...) {
		out = append(out, "May increase sun sensitivity - use sunscreen during the day.")
	}
	if containsAny(ingredients, "retinol", "retinoid") {
		out = append(out,
			"Not recommended for use during pregnancy.",
			"Avoid combining with other retinoids or exfoliating acids.")
	}
	if len(out) == 0 {
		out = append(out, "Discontinue use if irritation occurs.")
	}
	return out
}

func precautions(sensitive bool) []string {
	out := make([]string, 0, len(generalPrecautions)+1)
	if sensitive {
		out = append(out, PatchTestPrecaution)
	}
	return append(out, generalPrecautions...)
}
