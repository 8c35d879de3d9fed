package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_IsValid(t *testing.T) {
	for _, c := range Categories() {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, Category("pricing").IsValid())
	assert.False(t, Category("").IsValid())
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("  Safety ")
	assert.True(t, ok)
	assert.Equal(t, CategorySafety, c)

	_, ok = ParseCategory("other")
	assert.False(t, ok)
}

func TestQuestionSet_Coverage(t *testing.T) {
	var qs QuestionSet
	for i := 0; i < 14; i++ {
		qs = append(qs, Question{Text: fmt.Sprintf("q%d", i), Category: CategoryUsage})
	}

	assert.EqualError(t, qs.Check(MinQuestions), "14 questions, need at least 15")
	assert.Equal(t, []Category{CategoryInformational, CategorySafety, CategoryPurchase, CategoryComparison}, qs.MissingCategories())
	assert.Len(t, qs.ByCategory(CategoryUsage), 14)

	for _, c := range []Category{CategoryInformational, CategorySafety, CategoryPurchase, CategoryComparison} {
		qs = append(qs, Question{Text: "extra " + c.String(), Category: c})
	}

	assert.NoError(t, qs.Check(MinQuestions))
	assert.NoError(t, qs.Check(0), "minimum never drops below MinQuestions")
	assert.EqualError(t, qs.Check(20), "18 questions, need at least 20")
	assert.Empty(t, qs.MissingCategories())
	assert.Len(t, qs, 18)
	assert.Equal(t, 1, qs.CategoryCounts()[CategorySafety])
}

func TestQuestionSet_TooSmall(t *testing.T) {
	var qs QuestionSet
	for _, c := range Categories() {
		qs = append(qs, Question{Text: "q", Category: c})
	}
	assert.Empty(t, qs.MissingCategories())
	assert.EqualError(t, qs.Check(MinQuestions), "5 questions, need at least 15")
}

func TestQuestionSet_CheckMissingCategories(t *testing.T) {
	var qs QuestionSet
	for i := 0; i < 16; i++ {
		qs = append(qs, Question{Text: fmt.Sprintf("q%d", i), Category: CategoryUsage})
	}
	qs = append(qs, Question{Text: "price", Category: CategoryPurchase})

	assert.EqualError(t, qs.Check(MinQuestions), "no questions for informational, safety, comparison")
}
