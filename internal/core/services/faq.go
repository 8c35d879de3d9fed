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

var errNoAnswers = errors.New("response answers none of the questions")

var faqSchema = driven.ObjectSchema(map[string]*driven.Schema{
	"faqs": driven.ArraySchema(driven.ObjectSchema(map[string]*driven.Schema{
		"question": driven.StringSchema(),
		"answer":   driven.StringSchema(),
		"category": driven.StringSchema(),
	}, "question", "answer", "category")),
}, "faqs")

// AgentConfig holds the settings shared by the page agents.
type AgentConfig struct {
	// Temperature is used for every generation call of the agent.
	Temperature float64

	// Enhance lets the FAQ and product agents call the LLM.
	Enhance bool

	// FAQCount is the number of FAQ entries. Never below domain.MinFAQItems.
	FAQCount int
}

// PageInput is the pipeline state every page agent reads.
type PageInput struct {
	Product   domain.Product
	Questions domain.QuestionSet
	Blocks    domain.Blocks
	System    domain.SystemInfo
}

// FAQAgent selects questions, answers them and renders the faq template.
type FAQAgent struct {
	gen       *Generator
	templates *TemplateEngine
	cfg       AgentConfig
}

// NewFAQAgent creates an FAQ agent.
func NewFAQAgent(gen *Generator, templates *TemplateEngine, cfg AgentConfig) *FAQAgent {
	if cfg.FAQCount < domain.MinFAQItems {
		cfg.FAQCount = domain.MinFAQItems
	}
	return &FAQAgent{gen: gen, templates: templates, cfg: cfg}
}

// Generate builds the FAQ page.
func (a *FAQAgent) Generate(ctx context.Context, in PageInput) (*domain.Document, error) {
	logger.Section("FAQ Agent")

	selected := SelectFAQQuestions(in.Questions, a.cfg.FAQCount)
	logger.Debug("Selected %d of %d questions", len(selected), len(in.Questions))

	var faqs []domain.FAQ
	if a.cfg.Enhance {
		answered, err := a.answer(ctx, in.Product, selected)
		if err != nil {
			return nil, err
		}
		faqs = answered
	} else {
		faqs = make([]domain.FAQ, len(selected))
		for i, q := range selected {
			faqs[i] = domain.FAQ{Question: q.Text, Answer: FallbackAnswer(q, in.Product), Category: q.Category}
		}
	}

	p := in.Product
	return a.templates.Render(domain.PageFAQ.String(), domain.Bindings{
		Product:   &p,
		Blocks:    in.Blocks,
		Questions: in.Questions,
		FAQs:      faqs,
		System:    in.System,
	})
}

// answer asks for every selected question in one call. Questions the
// response leaves unanswered get a deterministic answer.
func (a *FAQAgent) answer(ctx context.Context, p domain.Product, selected []domain.Question) ([]domain.FAQ, error) {
	usage := logic.GenerateUsage(p)
	safety := logic.GenerateSafety(p)

	var answers []string
	_, err := generateJSON(ctx, a.gen, generationCall{
		stage:  domain.StageName(domain.StageFAQAgent),
		prompt: driven.PromptFAQAnswers,
		data: faqPromptData{
			Product:     newPromptProduct(p),
			Questions:   selected,
			Frequency:   usage.Frequency,
			Precautions: strings.Join(safety.Precautions, " "),
		},
		schema:      faqSchema,
		temperature: a.cfg.Temperature,
	}, func(r *faqResponse) error {
		answers = matchAnswers(selected, r.FAQs)
		for _, ans := range answers {
			if ans != "" {
				return nil
			}
		}
		return errNoAnswers
	})
	if err != nil {
		return nil, err
	}

	faqs := make([]domain.FAQ, len(selected))
	for i, q := range selected {
		ans := answers[i]
		if ans == "" {
			logger.Warn("No generated answer for %q, using fallback", q.Text)
			ans = FallbackAnswer(q, p)
		}
		faqs[i] = domain.FAQ{Question: q.Text, Answer: ans, Category: q.Category}
	}
	return faqs, nil
}

type faqResponse struct {
	FAQs []domain.FAQ `json:"faqs"`
}

// matchAnswers pairs response entries with the selected questions: by
// question text first, then by position for entries whose text matches no
// selected question.
func matchAnswers(selected []domain.Question, entries []domain.FAQ) []string {
	answers := make([]string, len(selected))

	index := make(map[string]int, len(selected))
	for i, q := range selected {
		index[normaliseQuestion(q.Text)] = i
	}

	byText := make(map[int]string, len(entries))
	for _, e := range entries {
		if i, ok := index[normaliseQuestion(e.Question)]; ok && strings.TrimSpace(e.Answer) != "" {
			if _, taken := byText[i]; !taken {
				byText[i] = collapse(e.Answer)
			}
		}
	}

	for i := range selected {
		if ans, ok := byText[i]; ok {
			answers[i] = ans
			continue
		}
		if i >= len(entries) {
			continue
		}
		e := entries[i]
		if _, named := index[normaliseQuestion(e.Question)]; named && normaliseQuestion(e.Question) != "" {
			continue
		}
		answers[i] = collapse(e.Answer)
	}
	return answers
}

// SelectFAQQuestions picks count questions: the first of every category in
// priority order, then round-robin over the categories.
func SelectFAQQuestions(qs domain.QuestionSet, count int) []domain.Question {
	byCategory := make(map[domain.Category][]domain.Question, len(domain.Categories()))
	for _, c := range domain.Categories() {
		byCategory[c] = qs.ByCategory(c)
	}

	out := make([]domain.Question, 0, count)
	next := make(map[domain.Category]int, len(byCategory))
	for len(out) < count {
		added := false
		for _, c := range domain.Categories() {
			if len(out) >= count {
				break
			}
			if next[c] < len(byCategory[c]) {
				out = append(out, byCategory[c][next[c]])
				next[c]++
				added = true
			}
		}
		if !added {
			break
		}
	}
	return out
}

// FallbackAnswer answers q from the product data and its content blocks.
func FallbackAnswer(q domain.Question, p domain.Product) string {
	name := p.Name
	switch q.Category {
	case domain.CategoryUsage:
		usage := logic.GenerateUsage(p)
		if strings.TrimSpace(p.Usage) == "" {
			return fmt.Sprintf("%s should be used as directed on the packaging. %s", name, usage.Tips[0])
		}
		return fmt.Sprintf("%s Recommended frequency: %s.", sentence(p.Usage), strings.ToLower(usage.Frequency))
	case domain.CategorySafety:
		safety := logic.GenerateSafety(p)
		answer := fmt.Sprintf("No side effects are listed for %s.", name)
		if strings.TrimSpace(p.SideEffects) != "" {
			answer = fmt.Sprintf("Reported side effects: %s.", strings.TrimRight(safety.SideEffects.Description, "."))
		}
		if len(safety.Precautions) > 0 {
			answer += " " + safety.Precautions[0]
		}
		return answer
	case domain.CategoryPurchase:
		if price := p.DisplayPrice(); price != domain.NotAvailable {
			return fmt.Sprintf("%s is priced at %s.", name, price)
		}
		return fmt.Sprintf("Pricing for %s is not listed in the product data.", name)
	case domain.CategoryComparison:
		hero := logic.HeroIngredient(p)
		if hero == domain.NotAvailable {
			return fmt.Sprintf("Compare %s with alternatives on ingredients, benefits and price to find the best fit for your skin.", name)
		}
		return fmt.Sprintf("%s stands out for its %s formulation. Compare ingredients, benefits and price to find the best fit for your skin.", name, hero)
	default:
		benefits := logic.GenerateBenefits(p)
		ingredients := logic.GenerateIngredients(p)
		answer := strings.TrimSpace(sentence(benefits.Summary) + " " + sentence(ingredients.Summary))
		if answer == "" {
			return fmt.Sprintf("%s is a skincare product. No further details are listed in the product data.", name)
		}
		return answer
	}
}

// sentence trims s and ensures it ends with a full stop.
func sentence(s string) string {
	s = collapse(s)
	if s == "" || s == domain.NotAvailable {
		return ""
	}
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}
