package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

var (
	// numberPattern finds the first decimal number in cleaned text.
	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// currencyWords are stripped before the number is extracted.
	currencyWords = regexp.MustCompile(`(?i)\b(?:rs\.?|inr|usd|eur|gbp|jpy)\b`)

	amountStripper = strings.NewReplacer("₹", "", "$", "", "€", "", "£", "", "¥", "", "%", "", ",", "")
)

var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"₹", "INR"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
}

var currencyCodes = map[string]string{
	"rs":  "INR",
	"rs.": "INR",
	"inr": "INR",
	"usd": "USD",
	"eur": "EUR",
	"gbp": "GBP",
	"jpy": "JPY",
}

// ProductParser validates and normalises raw product records.
// It performs no I/O and is safe for concurrent use.
type ProductParser struct {
	newSuffix func() string
}

// NewProductParser creates a parser that suffixes IDs with random UUID hex.
func NewProductParser() *ProductParser {
	return &ProductParser{
		newSuffix: func() string { return uuid.NewString()[:8] },
	}
}

// Parse converts a raw record into a canonical product.
//
// product_name is mandatory. Every other field is optional: missing or null
// strings become "", lists become empty, numbers become unknown. A present
// field of the wrong JSON type is rejected with a *domain.ValidationError.
func (p *ProductParser) Parse(raw domain.RawProduct) (domain.Product, error) {
	name, err := stringField(raw, domain.FieldProductName)
	if err != nil {
		return domain.Product{}, err
	}
	if name == "" {
		return domain.Product{}, &domain.ValidationError{Field: domain.FieldProductName, Reason: "is required"}
	}

	concentration, concentrationText, _, err := quantityField(raw, domain.FieldConcentration)
	if err != nil {
		return domain.Product{}, err
	}
	price, priceText, currency, err := quantityField(raw, domain.FieldPrice)
	if err != nil {
		return domain.Product{}, err
	}

	skinTypes, err := listField(raw, domain.FieldSkinType)
	if err != nil {
		return domain.Product{}, err
	}
	ingredients, err := listField(raw, domain.FieldKeyIngredients)
	if err != nil {
		return domain.Product{}, err
	}
	benefits, err := listField(raw, domain.FieldBenefits)
	if err != nil {
		return domain.Product{}, err
	}
	usage, err := stringField(raw, domain.FieldHowToUse)
	if err != nil {
		return domain.Product{}, err
	}
	sideEffects, err := stringField(raw, domain.FieldSideEffects)
	if err != nil {
		return domain.Product{}, err
	}

	title := cases.Title(language.English)
	for i, s := range skinTypes {
		skinTypes[i] = title.String(s)
	}

	return domain.Product{
		ID:                Slugify(name) + "-" + p.newSuffix(),
		Name:              name,
		Concentration:     concentration,
		ConcentrationText: concentrationText,
		SkinTypes:         skinTypes,
		Ingredients:       ingredients,
		Benefits:          benefits,
		Usage:             usage,
		SideEffects:       sideEffects,
		Price:             price,
		PriceText:         priceText,
		Currency:          currency,
	}, nil
}

// Slugify lowercases s, strips accents and joins alphanumeric runs with dashes.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "product"
	}
	return b.String()
}

// ParseAmount extracts the first number from free text, ignoring currency
// symbols, currency words, percent signs and thousands separators.
func ParseAmount(text string) domain.Quantity {
	cleaned := currencyWords.ReplaceAllString(amountStripper.Replace(text), "")
	m := numberPattern.FindString(cleaned)
	if m == "" {
		return domain.UnknownQuantity()
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return domain.UnknownQuantity()
	}
	return domain.KnownQuantity(v)
}

// DetectCurrency returns the ISO code named by a symbol or word in text.
func DetectCurrency(text string) string {
	for _, c := range currencySymbols {
		if strings.Contains(text, c.symbol) {
			return c.code
		}
	}
	if m := currencyWords.FindString(text); m != "" {
		return currencyCodes[strings.ToLower(m)]
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stringField(raw domain.RawProduct, field string) (string, error) {
	v, ok := raw.Lookup(field)
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &domain.ValidationError{Field: field, Reason: fmt.Sprintf("must be a string, got %s", jsonType(v))}
	}
	return collapse(s), nil
}

func listField(raw domain.RawProduct, field string) ([]string, error) {
	out := []string{}
	v, ok := raw.Lookup(field)
	if !ok {
		return out, nil
	}

	var items []string
	switch t := v.(type) {
	case string:
		items = strings.Split(t, ",")
	case []string:
		items = t
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, &domain.ValidationError{Field: field, Reason: fmt.Sprintf("must contain only strings, got %s", jsonType(item))}
			}
			items = append(items, s)
		}
	default:
		return nil, &domain.ValidationError{Field: field, Reason: fmt.Sprintf("must be a list or comma-separated string, got %s", jsonType(v))}
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = collapse(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out, nil
}

// quantityField returns the parsed value, the original text and any detected currency.
func quantityField(raw domain.RawProduct, field string) (domain.Quantity, string, string, error) {
	v, ok := raw.Lookup(field)
	if !ok {
		return domain.UnknownQuantity(), "", "", nil
	}

	switch t := v.(type) {
	case float64:
		return quantityFromFloat(t)
	case float32:
		return quantityFromFloat(float64(t))
	case int:
		return quantityFromFloat(float64(t))
	case int64:
		return quantityFromFloat(float64(t))
	case string:
		text := collapse(t)
		return ParseAmount(text), text, DetectCurrency(text), nil
	default:
		return domain.UnknownQuantity(), "", "", &domain.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("must be a number or text, got %s", jsonType(v)),
		}
	}
}

func quantityFromFloat(f float64) (domain.Quantity, string, string, error) {
	return domain.KnownQuantity(f), strconv.FormatFloat(f, 'f', -1, 64), "", nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
