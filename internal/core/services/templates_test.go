package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/logic"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func glowBoostBindings(t *testing.T) domain.Bindings {
	t.Helper()
	p := glowBoost(t)
	return domain.Bindings{
		Product: &p,
		Blocks:  ContentBlocks(p),
		Questions: domain.QuestionSet{
			{Text: "What is it?", Category: domain.CategoryInformational},
			{Text: "How do I use it?", Category: domain.CategoryUsage},
		},
		FAQs: []domain.FAQ{
			{Question: "What is it?", Answer: "A serum.", Category: domain.CategoryInformational},
		},
		System: domain.NewSystemInfo(fixedNow, "pagegen test", "mock-model", "run-1"),
	}
}

func simpleTemplate(fields ...domain.FieldSpec) domain.TemplateDefinition {
	return domain.TemplateDefinition{Name: "simple", PageType: domain.PageProduct, Fields: fields}
}

func TestTemplateEngine_DefaultsValidate(t *testing.T) {
	engine := defaultEngine(t)

	assert.Equal(t, []string{"comparison", "faq", "product"}, engine.Names())
	for _, page := range domain.PageTypes() {
		assert.True(t, engine.Has(page.String()), page.String())
	}
}

func TestTemplateEngine_Definition(t *testing.T) {
	engine := defaultEngine(t)

	def, err := engine.Definition("faq")
	require.NoError(t, err)
	assert.Equal(t, domain.PageFAQ, def.PageType)

	_, err = engine.Definition("landing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, engine.Has("landing"))
}

func TestTemplateEngine_Render_Product(t *testing.T) {
	engine := defaultEngine(t)
	b := glowBoostBindings(t)
	enhanced := DefaultEnhancement(*b.Product)
	b.Enhanced = &enhanced

	doc, err := engine.Render("product", b)

	require.NoError(t, err)
	assert.Equal(t, []string{"page_type", "product_name", "product_id", "generated_at"}, doc.Keys()[:4])
	assert.NotEmpty(t, doc.GetString("product_id"))
	assert.Equal(t, "product", doc.GetString("page_type"))
	assert.Equal(t, "GlowBoost Vitamin C Serum", doc.GetString("product_name"))
	assert.Equal(t, "₹699", doc.GetString("price"))
	assert.Equal(t, "Vitamin C", doc.GetString("hero_ingredient"))

	ingredients, ok := doc.Get("ingredients")
	require.True(t, ok)
	assert.Equal(t, []any{"Vitamin C", "Hyaluronic Acid"}, ingredients)

	usage, ok := doc.Get("usage")
	require.True(t, ok)
	usageDoc, ok := usage.(*domain.Document)
	require.True(t, ok)
	assert.Equal(t, "Apply 2–3 drops in the morning before sunscreen", usageDoc.GetString("instructions"))
}

func TestTemplateEngine_Render_FAQ(t *testing.T) {
	engine := defaultEngine(t)

	doc, err := engine.Render("faq", glowBoostBindings(t))

	require.NoError(t, err)
	faqs, ok := doc.Get("faqs")
	require.True(t, ok)
	list, ok := faqs.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	item := list[0].(*domain.Document)
	assert.Equal(t, []string{"question", "answer", "category"}, item.Keys())
	assert.Equal(t, "A serum.", item.GetString("answer"))

	meta, ok := doc.Get("metadata")
	require.True(t, ok)
	assert.Equal(t, "run-1", meta.(*domain.Document).GetString("run_id"))
	assert.Equal(t, logic.PatchTestPrecaution, doc.GetString("safety_note"))
}

func TestTemplateEngine_Render_MissingPriceUsesSentinel(t *testing.T) {
	p, err := NewProductParser().Parse(domain.RawProduct{"product_name": "Plain Cream"})
	require.NoError(t, err)
	engine := defaultEngine(t)
	enhanced := DefaultEnhancement(p)

	doc, err := engine.Render("product", domain.Bindings{
		Product:  &p,
		Blocks:   ContentBlocks(p),
		Enhanced: &enhanced,
		System:   domain.NewSystemInfo(fixedNow, "pagegen", "none", "run-2"),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.NotAvailable, doc.GetString("price"))
}

func TestTemplateEngine_Render_RequiredBlockMissing(t *testing.T) {
	engine := defaultEngine(t)
	b := glowBoostBindings(t)
	b.Blocks.Safety = nil

	_, err := engine.Render("faq", b)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTemplate))
	var tmplErr *domain.TemplateError
	require.True(t, errors.As(err, &tmplErr))
	assert.Equal(t, "blocks.safety", tmplErr.Field)
}

func TestTemplateEngine_Render_UnknownTemplate(t *testing.T) {
	engine := defaultEngine(t)

	_, err := engine.Render("landing", glowBoostBindings(t))

	assert.True(t, errors.Is(err, domain.ErrTemplate))
}

func TestTemplateEngine_Render_Rules(t *testing.T) {
	def := simpleTemplate(
		domain.FieldSpec{Name: "kind", Type: domain.FieldString, Default: "fixed"},
		domain.FieldSpec{Name: "name", Type: domain.FieldString, Source: "product.name"},
		domain.FieldSpec{Name: "first_benefit", Type: domain.FieldString, Source: "product.benefits.0"},
		domain.FieldSpec{Name: "tenth_benefit", Type: domain.FieldString, Source: "product.benefits.9"},
		domain.FieldSpec{Name: "headline", Type: domain.FieldString, Source: "enhanced.headline", Default: "No headline"},
		domain.FieldSpec{Name: "winner", Type: domain.FieldString, Source: "blocks.comparison.winner"},
		domain.FieldSpec{Name: "tags", Type: domain.FieldArray, Source: "product.skin_type", Items: []domain.FieldSpec{
			{Name: "label", Type: domain.FieldString, Source: "."},
		}},
		domain.FieldSpec{Name: "info", Type: domain.FieldObject, Fields: []domain.FieldSpec{
			{Name: "id", Type: domain.FieldString, Source: "product.id"},
		}},
		domain.FieldSpec{Name: "system", Type: domain.FieldObject, Source: "system", Fields: []domain.FieldSpec{
			{Name: "model", Type: domain.FieldString, Source: "model"},
		}},
		domain.FieldSpec{Name: "price", Type: domain.FieldNumber, Source: "product.price"},
	)
	engine, err := NewTemplateEngine([]domain.TemplateDefinition{def})
	require.NoError(t, err)
	b := glowBoostBindings(t)

	doc, err := engine.Render("simple", b)

	require.NoError(t, err)
	assert.Equal(t, "fixed", doc.GetString("kind"))
	assert.Equal(t, "GlowBoost Vitamin C Serum", doc.GetString("name"))
	assert.Equal(t, "Brightening", doc.GetString("first_benefit"))
	assert.Equal(t, domain.NotAvailable, doc.GetString("tenth_benefit"))
	assert.Equal(t, "No headline", doc.GetString("headline"))
	assert.Equal(t, domain.NotAvailable, doc.GetString("winner"))

	tags, _ := doc.Get("tags")
	require.Len(t, tags, 2)
	assert.Equal(t, "Oily", tags.([]any)[0].(*domain.Document).GetString("label"))

	info, _ := doc.Get("info")
	assert.Equal(t, b.Product.ID, info.(*domain.Document).GetString("id"))

	system, _ := doc.Get("system")
	assert.Equal(t, "mock-model", system.(*domain.Document).GetString("model"))

	price, _ := doc.Get("price")
	assert.Equal(t, json.Number("699"), price)
}

func TestTemplateEngine_Render_RequiredSource(t *testing.T) {
	def := simpleTemplate(
		domain.FieldSpec{Name: "headline", Type: domain.FieldString, Source: "enhanced.headline", Required: true},
	)
	engine, err := NewTemplateEngine([]domain.TemplateDefinition{def})
	require.NoError(t, err)

	_, err = engine.Render("simple", glowBoostBindings(t))

	var tmplErr *domain.TemplateError
	require.True(t, errors.As(err, &tmplErr))
	assert.Equal(t, "headline", tmplErr.Field)
}

func TestTemplateEngine_WithMissingValue(t *testing.T) {
	def := simpleTemplate(domain.FieldSpec{Name: "winner", Type: domain.FieldString, Source: "blocks.comparison.winner"})
	engine, err := NewTemplateEngine([]domain.TemplateDefinition{def}, WithMissingValue(nil))
	require.NoError(t, err)

	doc, err := engine.Render("simple", glowBoostBindings(t))

	require.NoError(t, err)
	v, ok := doc.Get("winner")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestTemplateEngine_Render_Deterministic(t *testing.T) {
	engine := defaultEngine(t)
	b := glowBoostBindings(t)

	first, err := engine.Render("faq", b)
	require.NoError(t, err)
	second, err := engine.Render("faq", b)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	c, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(c))
	assert.Equal(t, string(a), string(c))
}

func TestNewTemplateEngine_Rejects(t *testing.T) {
	str := func(name, source string) domain.FieldSpec {
		return domain.FieldSpec{Name: name, Type: domain.FieldString, Source: source}
	}

	tests := []struct {
		name   string
		defs   []domain.TemplateDefinition
		reason string
	}{
		{
			name:   "unnamed template",
			defs:   []domain.TemplateDefinition{{PageType: domain.PageFAQ, Fields: []domain.FieldSpec{str("a", "")}}},
			reason: "template name is required",
		},
		{
			name:   "duplicate template",
			defs:   []domain.TemplateDefinition{simpleTemplate(str("a", "")), simpleTemplate(str("a", ""))},
			reason: "duplicate template",
		},
		{
			name:   "unknown page type",
			defs:   []domain.TemplateDefinition{{Name: "x", PageType: "landing", Fields: []domain.FieldSpec{str("a", "")}}},
			reason: "unknown page type",
		},
		{
			name: "unknown block",
			defs: []domain.TemplateDefinition{{Name: "x", PageType: domain.PageFAQ, Fields: []domain.FieldSpec{str("a", "")},
				RequiredBlocks: []domain.FragmentType{"reviews"}}},
			reason: "unknown block",
		},
		{
			name:   "no fields",
			defs:   []domain.TemplateDefinition{{Name: "x", PageType: domain.PageFAQ}},
			reason: "no fields",
		},
		{
			name:   "duplicate field",
			defs:   []domain.TemplateDefinition{simpleTemplate(str("a", ""), str("a", ""))},
			reason: "duplicate field",
		},
		{
			name:   "unknown field type",
			defs:   []domain.TemplateDefinition{simpleTemplate(domain.FieldSpec{Name: "a", Type: "money"})},
			reason: "unknown field type",
		},
		{
			name:   "unknown source",
			defs:   []domain.TemplateDefinition{simpleTemplate(str("a", "product.colour"))},
			reason: `unknown key "colour"`,
		},
		{
			name:   "unknown root",
			defs:   []domain.TemplateDefinition{simpleTemplate(str("a", "customer.name"))},
			reason: `unknown key "customer"`,
		},
		{
			name:   "non numeric index",
			defs:   []domain.TemplateDefinition{simpleTemplate(str("a", "product.benefits.first"))},
			reason: "not a number",
		},
		{
			name:   "descend into quantity",
			defs:   []domain.TemplateDefinition{simpleTemplate(str("a", "product.price.value"))},
			reason: "cannot descend",
		},
		{
			name:   "array without source",
			defs:   []domain.TemplateDefinition{simpleTemplate(domain.FieldSpec{Name: "a", Type: domain.FieldArray})},
			reason: "array field needs a source",
		},
		{
			name:   "array over string",
			defs:   []domain.TemplateDefinition{simpleTemplate(domain.FieldSpec{Name: "a", Type: domain.FieldArray, Source: "product.name"})},
			reason: "is not a list",
		},
		{
			name: "bad item source",
			defs: []domain.TemplateDefinition{simpleTemplate(domain.FieldSpec{Name: "a", Type: domain.FieldArray, Source: "faqs",
				Items: []domain.FieldSpec{str("q", "text")}})},
			reason: `unknown key "text"`,
		},
		{
			name: "nested fields on string",
			defs: []domain.TemplateDefinition{simpleTemplate(domain.FieldSpec{Name: "a", Type: domain.FieldString, Source: "product.name",
				Fields: []domain.FieldSpec{str("b", "")}})},
			reason: "only array and object fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTemplateEngine(tt.defs)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrTemplate))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestNewTemplateEngine_AcceptsNestedPaths(t *testing.T) {
	def := simpleTemplate(
		domain.FieldSpec{Name: "cheaper", Type: domain.FieldString, Source: "blocks.comparison.dimensions.price.cheaper_option"},
		domain.FieldSpec{Name: "effects", Type: domain.FieldArray, Source: "blocks.safety.side_effects.details", Items: []domain.FieldSpec{
			{Name: "effect", Type: domain.FieldString, Source: "effect"},
		}},
		domain.FieldSpec{Name: "price_b", Type: domain.FieldNumber, Source: "product_b.price"},
	)

	_, err := NewTemplateEngine([]domain.TemplateDefinition{def})

	assert.NoError(t, err)
}
