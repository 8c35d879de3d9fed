package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagegen/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
)

// LLM routes, picked by a marker phrase in each default prompt.
const (
	routeQuestions  = "questions"
	routeFAQ        = "faq"
	routeProduct    = "product"
	routeCompetitor = "competitor"
)

const questionsReply = `{"questions":[
{"question":"What is GlowBoost Vitamin C Serum?","category":"informational"},
{"question":"What does Vitamin C do for skin?","category":"informational"},
{"question":"Which skin types suit GlowBoost?","category":"informational"},
{"question":"How many drops should I apply?","category":"usage"},
{"question":"Should I apply it in the morning or at night?","category":"usage"},
{"question":"Can I use it under sunscreen?","category":"usage"},
{"question":"Does it cause tingling?","category":"safety"},
{"question":"Is it safe for sensitive skin?","category":"safety"},
{"question":"Should I patch test first?","category":"safety"},
{"question":"How much does GlowBoost cost?","category":"purchase"},
{"question":"Is GlowBoost good value?","category":"purchase"},
{"question":"How long does one bottle last?","category":"purchase"},
{"question":"How does GlowBoost compare to other vitamin C serums?","category":"comparison"},
{"question":"Is GlowBoost better than a niacinamide serum?","category":"comparison"},
{"question":"Why choose GlowBoost over cheaper serums?","category":"comparison"}
]}`

const productCopyReply = `{"headline":"Brighter skin every morning",
"description":"GlowBoost Vitamin C Serum brightens and fades dark spots.",
"ingredients_description":"Vitamin C with Hyaluronic Acid.",
"benefits_description":"Visible brightening.",
"usage_tips":["Apply before sunscreen"],
"precautions":["Patch test first"]}`

const competitorReply = "Here is the product:\n```json\n" + `{"product_name":"RadiantGlow Niacinamide Serum",
"concentration":"5% Niacinamide",
"skin_type":["Oily","Sensitive"],
"key_ingredients":["Niacinamide","Zinc"],
"benefits":["Controls oil","Minimises pores"],
"how_to_use":"Apply 3 drops at night",
"side_effects":"None reported",
"price":"₹899"}` + "\n```"

var faqLine = regexp.MustCompile(`(?m)^\d+\. \[[a-z]+\] `)

// mockLLMService routes each prompt to a canned reply. Queued replies are
// consumed in order; once empty the route falls back to its default reply.
type mockLLMService struct {
	mu      sync.Mutex
	model   string
	queued  map[string][]string
	errs    map[string]error
	calls   map[string]int
	reqs    []driven.GenerateRequest
	blockOn string
	closed  bool
}

func newMockLLM() *mockLLMService {
	return &mockLLMService{
		model:  "mock-model",
		queued: make(map[string][]string),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (m *mockLLMService) reply(route string, texts ...string) *mockLLMService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[route] = append(m.queued[route], texts...)
	return m
}

func (m *mockLLMService) fail(route string, err error) *mockLLMService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[route] = err
	return m
}

func (m *mockLLMService) callsFor(route string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[route]
}

func (m *mockLLMService) requests() []driven.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.GenerateRequest(nil), m.reqs...)
}

func routeOf(prompt string) string {
	switch {
	case strings.Contains(prompt, "FICTIONAL competitor"):
		return routeCompetitor
	case strings.Contains(prompt, "product page copy"):
		return routeProduct
	case strings.Contains(prompt, "FAQ"):
		return routeFAQ
	case strings.Contains(prompt, "customer questions"):
		return routeQuestions
	default:
		return ""
	}
}

func (m *mockLLMService) Generate(ctx context.Context, req driven.GenerateRequest) (string, error) {
	route := routeOf(req.Prompt)

	m.mu.Lock()
	m.calls[route]++
	m.reqs = append(m.reqs, req)
	blocking := m.blockOn != "" && m.blockOn == route
	err := m.errs[route]
	var text string
	if q := m.queued[route]; len(q) > 0 {
		text, m.queued[route] = q[0], q[1:]
	}
	m.mu.Unlock()

	if blocking {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	if text != "" {
		return text, nil
	}

	switch route {
	case routeQuestions:
		return questionsReply, nil
	case routeProduct:
		return productCopyReply, nil
	case routeCompetitor:
		return competitorReply, nil
	case routeFAQ:
		return faqReply(req.Prompt), nil
	default:
		return "", fmt.Errorf("unexpected prompt: %.40s", req.Prompt)
	}
}

// faqReply answers every numbered question in the prompt by position.
func faqReply(prompt string) string {
	n := len(faqLine.FindAllStringIndex(prompt, -1))
	faqs := make([]domain.FAQ, n)
	for i := range faqs {
		faqs[i] = domain.FAQ{Answer: fmt.Sprintf("Generated answer %d.", i)}
	}
	data, _ := json.Marshal(faqResponse{FAQs: faqs})
	return string(data)
}

func (m *mockLLMService) ModelName() string { return m.model }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// mockPromptStore serves fixed prompt templates.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
}

func (m *mockPromptStore) Reload() {}

// defaultPrompts returns the file prompt store rooted in a temp dir, so the
// shipped default prompts are what the tests render.
func defaultPrompts(t *testing.T) driven.PromptStore {
	t.Helper()
	store, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func defaultEngine(t *testing.T) *TemplateEngine {
	t.Helper()
	defs, err := file.NewTemplateSource("").Load()
	require.NoError(t, err)
	engine, err := NewTemplateEngine(defs)
	require.NoError(t, err)
	return engine
}

func testGenerator(t *testing.T, llm driven.LLMService, strict bool) *Generator {
	t.Helper()
	return NewGenerator(llm, defaultPrompts(t), GenerationConfig{MaxTokens: 1024, StrictJSON: strict})
}

func glowBoost(t *testing.T) domain.Product {
	t.Helper()
	p, err := NewProductParser().Parse(glowBoostRaw())
	require.NoError(t, err)
	return p
}

// mockDocumentWriter records written documents in memory.
type mockDocumentWriter struct {
	mu   sync.Mutex
	dir  string
	docs map[string]*domain.Document
	err  error
}

func (m *mockDocumentWriter) WriteAll(_ context.Context, dir string, docs []driven.OutputDocument) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.dir = dir
	m.docs = make(map[string]*domain.Document, len(docs))
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		m.docs[d.Name] = d.Document
		paths = append(paths, dir+"/"+d.Name)
	}
	return paths, nil
}

// mockRunStore keeps reports in a map.
type mockRunStore struct {
	mu      sync.Mutex
	reports map[string]*domain.RunReport
	saveErr error
}

func newMockRunStore() *mockRunStore {
	return &mockRunStore{reports: make(map[string]*domain.RunReport)}
}

func (m *mockRunStore) Save(_ context.Context, r *domain.RunReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.reports[r.RunID] = r
	return nil
}

func (m *mockRunStore) Get(_ context.Context, id string) (*domain.RunReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockRunStore) List(_ context.Context, limit int) ([]domain.RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RunSummary, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRunStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}
