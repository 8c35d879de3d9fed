package domain

import (
	"fmt"
	"strings"
)

// MinQuestions is the minimum size of a QuestionSet.
const MinQuestions = 15

// Category classifies a user question.
type Category string

// Question categories, in FAQ priority order.
const (
	CategoryInformational Category = "informational"
	CategoryUsage         Category = "usage"
	CategorySafety        Category = "safety"
	CategoryPurchase      Category = "purchase"
	CategoryComparison    Category = "comparison"
)

// Categories returns every category in priority order.
func Categories() []Category {
	return []Category{
		CategoryInformational,
		CategoryUsage,
		CategorySafety,
		CategoryPurchase,
		CategoryComparison,
	}
}

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryInformational, CategoryUsage, CategorySafety, CategoryPurchase, CategoryComparison:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// ParseCategory normalises s and reports whether it names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.IsValid()
}

// Question is a single candidate user question.
type Question struct {
	Text     string   `json:"question"`
	Category Category `json:"category"`
}

// QuestionSet is an ordered, read-only collection of questions.
type QuestionSet []Question

// ByCategory returns the questions in c, preserving order.
func (qs QuestionSet) ByCategory(c Category) []Question {
	var out []Question
	for _, q := range qs {
		if q.Category == c {
			out = append(out, q)
		}
	}
	return out
}

// CategoryCounts returns how many questions fall in each category.
func (qs QuestionSet) CategoryCounts() map[Category]int {
	counts := make(map[Category]int, len(Categories()))
	for _, q := range qs {
		counts[q.Category]++
	}
	return counts
}

// MissingCategories returns the categories with no question, in priority order.
func (qs QuestionSet) MissingCategories() []Category {
	counts := qs.CategoryCounts()
	var missing []Category
	for _, c := range Categories() {
		if counts[c] == 0 {
			missing = append(missing, c)
		}
	}
	return missing
}

// Check returns nil when the set holds at least minimum questions (never
// fewer than MinQuestions) and covers every category.
func (qs QuestionSet) Check(minimum int) error {
	minimum = max(minimum, MinQuestions)
	if len(qs) < minimum {
		return fmt.Errorf("%d questions, need at least %d", len(qs), minimum)
	}
	if missing := qs.MissingCategories(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, c := range missing {
			names[i] = string(c)
		}
		return fmt.Errorf("no questions for %s", strings.Join(names, ", "))
	}
	return nil
}
