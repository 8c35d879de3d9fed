package logic

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

// Frequencies returned by the usage transform.
const (
	FrequencyTwiceDaily   = "Twice daily (morning and evening)"
	FrequencyMorning      = "Once daily (morning)"
	FrequencyEvening      = "Once daily (evening)"
	FrequencyDaily        = "Once daily"
	FrequencyWeekly       = "Weekly"
	FrequencyTwiceWeekly  = "Twice weekly"
	FrequencyAsDirected   = "As directed"
	defaultApplicationTip = "Apply to clean, dry skin for optimal absorption."
	defaultAbsorptionTip  = "Allow the product to fully absorb before applying other products."
)

// stepMarker matches "1.", "2)", "Step 3:" style markers at a word boundary.
var stepMarker = regexp.MustCompile(`(?i)(?:^|\s)(?:step\s*)?\d+[.):]\s+`)

// GenerateUsage builds the usage fragment.
func GenerateUsage(p domain.Product) domain.UsageFragment {
	steps := parseSteps(p.Usage)

	return domain.UsageFragment{
		Type:         domain.FragmentUsage,
		Title:        "How to Use",
		ProductName:  productName(p),
		Instructions: nonEmpty(p.Usage),
		Steps:        steps,
		StepCount:    len(steps),
		Tips:         usageTips(p.SkinTypes, p.Usage),
		Frequency:    usageFrequency(p.Usage),
		SuitableFor:  cloneStrings(p.SkinTypes),
	}
}

// parseSteps splits usage text on numbered markers, then on sentence boundaries.
func parseSteps(text string) []domain.UsageStep {
	steps := []domain.UsageStep{}
	text = strings.TrimSpace(text)
	if text == "" {
		return steps
	}

	var segments []string
	last := 0
	for _, loc := range stepMarker.FindAllStringIndex(text, -1) {
		segments = append(segments, text[last:loc[0]])
		last = loc[1]
	}
	segments = append(segments, text[last:])

	for _, seg := range segments {
		for _, sentence := range splitSentences(seg) {
			steps = append(steps, domain.UsageStep{Step: len(steps) + 1, Instruction: sentence})
		}
	}
	return steps
}

// splitSentences splits after '.', '!' or '?' when followed by whitespace.
func splitSentences(s string) []string {
	var out []string
	runes := []rune(s)
	start := 0
	for i, r := range runes {
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			out = appendTrimmed(out, string(runes[start:i+1]))
			start = i + 1
		}
	}
	return appendTrimmed(out, string(runes[start:]))
}

func appendTrimmed(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return out
	}
	return append(out, s)
}

func usageTips(skinTypes []string, usage string) []string {
	var tips []string
	if containsAny(usage, "morning") {
		tips = append(tips, "Use as part of your morning skincare routine for best results.")
	}
	if containsAny(usage, "night", "evening") {
		tips = append(tips, "Apply at night to allow the product to work while you sleep.")
	}
	if containsAny(usage, "sunscreen", "spf") {
		tips = append(tips, "Always follow with sunscreen during the day for optimal protection.")
	}
	if containsAny(usage, "drops") {
		tips = append(tips, "Warm the drops between your palms before applying for better absorption.")
	}
	if len(skinTypes) > 0 {
		tips = append(tips, fmt.Sprintf("Specially formulated for %s skin types.",
			strings.Join(lowerAll(skinTypes), " and ")))
	}
	if len(tips) == 0 {
		tips = append(tips, defaultApplicationTip, defaultAbsorptionTip)
	}
	return tips
}

func usageFrequency(usage string) string {
	lower := strings.ToLower(usage)
	morning := strings.Contains(lower, "morning")
	evening := strings.Contains(lower, "night") || strings.Contains(lower, "evening")
	twice := strings.Contains(lower, "twice") || strings.Contains(lower, "2x")

	switch {
	case strings.Contains(lower, "weekly") || strings.Contains(lower, "a week"):
		if twice {
			return FrequencyTwiceWeekly
		}
		return FrequencyWeekly
	case twice || (morning && evening):
		return FrequencyTwiceDaily
	case morning:
		return FrequencyMorning
	case evening:
		return FrequencyEvening
	case strings.Contains(lower, "daily"):
		return FrequencyDaily
	default:
		return FrequencyAsDirected
	}
}
