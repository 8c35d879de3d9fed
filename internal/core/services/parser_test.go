package services

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

func glowBoostRaw() domain.RawProduct {
	return domain.RawProduct{
		"product_name":    "GlowBoost Vitamin C Serum",
		"concentration":   "10% Vitamin C",
		"skin_type":       []any{"Oily", "Combination"},
		"key_ingredients": []any{"Vitamin C", "Hyaluronic Acid"},
		"benefits":        []any{"Brightening", "Fades dark spots"},
		"how_to_use":      "Apply 2–3 drops in the morning before sunscreen",
		"side_effects":    "Mild tingling for sensitive skin",
		"price":           "₹699",
	}
}

func TestProductParser_Parse_Sample(t *testing.T) {
	parser := NewProductParser()

	p, err := parser.Parse(glowBoostRaw())

	require.NoError(t, err)
	assert.Equal(t, "GlowBoost Vitamin C Serum", p.Name)
	assert.Regexp(t, regexp.MustCompile(`^glowboost-vitamin-c-serum-[0-9a-f]{8}$`), p.ID)

	price, ok := p.Price.Value()
	require.True(t, ok)
	assert.InDelta(t, 699, price, 0.0001)
	assert.Equal(t, "₹699", p.PriceText)
	assert.Equal(t, "INR", p.Currency)
	assert.Equal(t, "₹699", p.DisplayPrice())

	conc, ok := p.Concentration.Value()
	require.True(t, ok)
	assert.InDelta(t, 10, conc, 0.0001)
	assert.Equal(t, "10% Vitamin C", p.ConcentrationText)

	assert.Equal(t, []string{"Oily", "Combination"}, p.SkinTypes)
	assert.Equal(t, []string{"Vitamin C", "Hyaluronic Acid"}, p.Ingredients)
	assert.Equal(t, []string{"Brightening", "Fades dark spots"}, p.Benefits)
	assert.Equal(t, "Mild tingling for sensitive skin", p.SideEffects)
	assert.False(t, p.Fictional)
}

func TestProductParser_Parse_UniqueIDs(t *testing.T) {
	parser := NewProductParser()

	a, err := parser.Parse(glowBoostRaw())
	require.NoError(t, err)
	b, err := parser.Parse(glowBoostRaw())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestProductParser_Parse_MissingName(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawProduct
	}{
		{"absent", domain.RawProduct{"price": "₹699"}},
		{"null", domain.RawProduct{"product_name": nil}},
		{"blank", domain.RawProduct{"product_name": "   "}},
	}

	parser := NewProductParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.raw)

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "product_name", verr.Field)
		})
	}
}

func TestProductParser_Parse_WrongTypes(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"name is a number", "product_name", 42.0},
		{"usage is a list", "how_to_use", []any{"apply"}},
		{"price is a bool", "price", true},
		{"benefits is a number", "benefits", 3.0},
		{"ingredients hold numbers", "key_ingredients", []any{"Vitamin C", 5.0}},
	}

	parser := NewProductParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := glowBoostRaw()
			raw[tt.field] = tt.value

			_, err := parser.Parse(raw)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestProductParser_Parse_MinimalRecord(t *testing.T) {
	parser := NewProductParser()

	p, err := parser.Parse(domain.RawProduct{"product_name": "Plain Cream"})

	require.NoError(t, err)
	assert.NotNil(t, p.SkinTypes)
	assert.NotNil(t, p.Ingredients)
	assert.NotNil(t, p.Benefits)
	assert.Empty(t, p.SkinTypes)
	assert.Empty(t, p.Usage)
	assert.False(t, p.Price.IsKnown())
	assert.False(t, p.Concentration.IsKnown())
	assert.Equal(t, domain.NotAvailable, p.DisplayPrice())
}

func TestProductParser_Parse_CommaSeparatedLists(t *testing.T) {
	parser := NewProductParser()

	p, err := parser.Parse(domain.RawProduct{
		"product_name":    "Night Repair",
		"skin_type":       "dry,  sensitive , Dry,",
		"key_ingredients": "Retinol, Niacinamide",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Dry", "Sensitive"}, p.SkinTypes)
	assert.Equal(t, []string{"Retinol", "Niacinamide"}, p.Ingredients)
}

func TestProductParser_Parse_NumericPrice(t *testing.T) {
	parser := NewProductParser()

	p, err := parser.Parse(domain.RawProduct{"product_name": "Budget Serum", "price": 499.0, "concentration": 5})

	require.NoError(t, err)
	v, ok := p.Price.Value()
	require.True(t, ok)
	assert.InDelta(t, 499, v, 0.0001)
	assert.Equal(t, "499", p.PriceText)
	assert.Empty(t, p.Currency)

	c, ok := p.Concentration.Value()
	require.True(t, ok)
	assert.InDelta(t, 5, c, 0.0001)
}

func TestProductParser_Parse_UnparseablePrice(t *testing.T) {
	parser := NewProductParser()

	p, err := parser.Parse(domain.RawProduct{"product_name": "Mystery", "price": "call us"})

	require.NoError(t, err)
	assert.False(t, p.Price.IsKnown())
	assert.Equal(t, "call us", p.PriceText)
	assert.Equal(t, "call us", p.DisplayPrice())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		known bool
	}{
		{"₹699", 699, true},
		{"Rs. 1,299", 1299, true},
		{"USD 12.50", 12.5, true},
		{"$ 20", 20, true},
		{"10%", 10, true},
		{"15% Vitamin C", 15, true},
		{"free", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q := ParseAmount(tt.in)
			v, ok := q.Value()
			assert.Equal(t, tt.known, ok)
			if tt.known {
				assert.InDelta(t, tt.want, v, 0.0001)
			}
		})
	}
}

func TestDetectCurrency(t *testing.T) {
	assert.Equal(t, "INR", DetectCurrency("₹699"))
	assert.Equal(t, "INR", DetectCurrency("Rs 699"))
	assert.Equal(t, "USD", DetectCurrency("$12"))
	assert.Equal(t, "EUR", DetectCurrency("12 eur"))
	assert.Equal(t, "", DetectCurrency("699"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GlowBoost Vitamin C Serum", "glowboost-vitamin-c-serum"},
		{"  Crème   Brûlée  ", "creme-brulee"},
		{"RadiantGlow™ 20%", "radiantglow-20"},
		{"!!!", "product"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
