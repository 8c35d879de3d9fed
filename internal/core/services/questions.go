package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/logic"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/logger"
)

// minPerCategory is how many questions per category the prompt asks for.
const minPerCategory = 3

var errNoQuestions = errors.New("response contains no usable questions")

// questionBank holds fallback questions per category. %[1]s is the product
// name and %[2]s its hero ingredient.
var questionBank = map[domain.Category][]string{
	domain.CategoryInformational: {
		"What is %[1]s?",
		"What are the key ingredients in %[1]s?",
		"What does %[2]s do in %[1]s?",
		"Which skin types is %[1]s suitable for?",
		"What are the main benefits of %[1]s?",
	},
	domain.CategoryUsage: {
		"How do I use %[1]s?",
		"When should I apply %[1]s in my routine?",
		"How often should I use %[1]s?",
		"Can I use %[1]s with sunscreen?",
		"How long does it take to see results from %[1]s?",
	},
	domain.CategorySafety: {
		"Does %[1]s have any side effects?",
		"Is %[1]s safe for sensitive skin?",
		"Should I do a patch test before using %[1]s?",
		"Can %[1]s cause irritation?",
		"Can I use %[1]s during pregnancy?",
	},
	domain.CategoryPurchase: {
		"How much does %[1]s cost?",
		"Is %[1]s worth the price?",
		"Where can I buy %[1]s?",
		"How long does one bottle of %[1]s last?",
		"Is there a discount available for %[1]s?",
	},
	domain.CategoryComparison: {
		"How does %[1]s compare to similar products?",
		"What makes %[1]s different from other serums?",
		"Is %[1]s better than products without %[2]s?",
		"Should I choose %[1]s over a cheaper alternative?",
		"Can %[1]s replace my current skincare product?",
	},
}

var questionsSchema = driven.ObjectSchema(map[string]*driven.Schema{
	"questions": driven.ArraySchema(driven.ObjectSchema(map[string]*driven.Schema{
		"question": driven.StringSchema(),
		"category": driven.StringSchema(
			string(domain.CategoryInformational),
			string(domain.CategoryUsage),
			string(domain.CategorySafety),
			string(domain.CategoryPurchase),
			string(domain.CategoryComparison),
		),
	}, "question", "category")),
}, "questions")

// QuestionGenerator derives a categorised question set for a product.
type QuestionGenerator struct {
	gen          *Generator
	minQuestions int
	temperature  float64
}

// NewQuestionGenerator creates a question generator. minQuestions is clamped
// to [domain.MinQuestions, domain.MaxQuestions], the range the fallback bank
// can always fill.
func NewQuestionGenerator(gen *Generator, minQuestions int, temperature float64) *QuestionGenerator {
	minQuestions = min(max(minQuestions, domain.MinQuestions), domain.MaxQuestions)
	return &QuestionGenerator{gen: gen, minQuestions: minQuestions, temperature: temperature}
}

// Generate asks the LLM for questions, cleans the answer and pads it from
// the fallback bank until every category is present and the minimum holds.
func (g *QuestionGenerator) Generate(ctx context.Context, p domain.Product) (domain.QuestionSet, error) {
	logger.Section("Question Generator")

	data := questionsPromptData{
		Product:     newPromptProduct(p),
		Categories:  categoryList(),
		Count:       g.minQuestions,
		PerCategory: minPerCategory,
	}

	resp, err := generateJSON(ctx, g.gen, generationCall{
		stage:       domain.StageName(domain.StageQuestionGenerator),
		prompt:      driven.PromptQuestions,
		data:        data,
		schema:      questionsSchema,
		temperature: g.temperature,
	}, func(r *questionsResponse) error {
		r.Questions = cleanQuestions(r.Questions)
		if len(r.Questions) == 0 {
			return errNoQuestions
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	set := domain.QuestionSet(resp.Questions)
	logger.Debug("LLM returned %d usable questions", len(set))

	padded := PadQuestions(set, p, g.minQuestions)
	if added := len(padded) - len(set); added > 0 {
		logger.Debug("Padded question set with %d fallback questions", added)
	}
	if err := padded.Check(g.minQuestions); err != nil {
		return nil, &domain.GenerationError{
			Stage: domain.StageName(domain.StageQuestionGenerator),
			Err:   fmt.Errorf("incomplete question set: %w", err),
		}
	}
	return padded, nil
}

// questionsResponse accepts {"questions":[{question,category}]} and the
// grouped form {"<category>":["question", ...]}.
type questionsResponse struct {
	Questions []domain.Question
}

func (r *questionsResponse) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Questions []domain.Question `json:"questions"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Questions) > 0 {
		r.Questions = wrapped.Questions
		return nil
	}

	var grouped map[string][]string
	if err := json.Unmarshal(data, &grouped); err != nil {
		return fmt.Errorf("unrecognised question format: %w", err)
	}
	r.Questions = nil
	for _, c := range domain.Categories() {
		for _, text := range grouped[string(c)] {
			r.Questions = append(r.Questions, domain.Question{Text: text, Category: c})
		}
	}
	return nil
}

// cleanQuestions drops empty questions and unknown categories and removes
// duplicates, keeping the first occurrence.
func cleanQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, q := range in {
		text := collapse(q.Text)
		c, ok := domain.ParseCategory(string(q.Category))
		if text == "" || !ok {
			continue
		}
		key := normaliseQuestion(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, domain.Question{Text: text, Category: c})
	}
	return out
}

// PadQuestions fills gaps from the fallback bank: one question for every
// missing category first, then round-robin over the categories until the
// set holds at least minimum questions or the bank is exhausted.
func PadQuestions(set domain.QuestionSet, p domain.Product, minimum int) domain.QuestionSet {
	out := make(domain.QuestionSet, len(set), max(len(set), minimum))
	copy(out, set)

	seen := make(map[string]bool, len(out))
	for _, q := range out {
		seen[normaliseQuestion(q.Text)] = true
	}

	bank := fallbackQuestions(p)
	next := make(map[domain.Category]int, len(bank))
	take := func(c domain.Category) bool {
		for next[c] < len(bank[c]) {
			text := bank[c][next[c]]
			next[c]++
			if key := normaliseQuestion(text); !seen[key] {
				seen[key] = true
				out = append(out, domain.Question{Text: text, Category: c})
				return true
			}
		}
		return false
	}

	for _, c := range out.MissingCategories() {
		take(c)
	}

	for len(out) < minimum {
		added := false
		for _, c := range domain.Categories() {
			if len(out) >= minimum {
				break
			}
			if take(c) {
				added = true
			}
		}
		if !added {
			break
		}
	}
	return out
}

// fallbackQuestions renders the question bank for a product.
func fallbackQuestions(p domain.Product) map[domain.Category][]string {
	name := p.Name
	if name == "" {
		name = "this product"
	}
	hero := logic.HeroIngredient(p)
	if hero == domain.NotAvailable {
		hero = "its key ingredients"
	}

	out := make(map[domain.Category][]string, len(questionBank))
	for c, templates := range questionBank {
		rendered := make([]string, len(templates))
		for i, t := range templates {
			rendered[i] = fmt.Sprintf(t, name, hero)
		}
		out[c] = rendered
	}
	return out
}

func normaliseQuestion(s string) string {
	s = strings.ToLower(collapse(s))
	return strings.TrimRight(s, "?!. ")
}

func categoryList() string {
	names := make([]string, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}
