package domain

import (
	"encoding/json"
	"errors"
	"strconv"
)

// UnknownMarker is the JSON value emitted for a numeric field that could not be parsed.
const UnknownMarker = "unknown"

// Quantity is a parsed numeric value or the explicit unknown marker.
// It never carries unparsed text; the original text lives beside it on Product.
type Quantity struct {
	value float64
	known bool
}

// KnownQuantity returns a Quantity holding v.
func KnownQuantity(v float64) Quantity {
	return Quantity{value: v, known: true}
}

// UnknownQuantity returns the unknown marker.
func UnknownQuantity() Quantity {
	return Quantity{}
}

// Value returns the number and whether it is known.
func (q Quantity) Value() (float64, bool) {
	return q.value, q.known
}

// IsKnown reports whether the quantity holds a number.
func (q Quantity) IsKnown() bool {
	return q.known
}

// String formats the number without trailing zeros, or returns the unknown marker.
func (q Quantity) String() string {
	if !q.known {
		return UnknownMarker
	}
	return strconv.FormatFloat(q.value, 'f', -1, 64)
}

// MarshalJSON encodes a known quantity as a JSON number and an unknown one as "unknown".
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.known {
		return json.Marshal(UnknownMarker)
	}
	return json.Marshal(q.value)
}

// UnmarshalJSON accepts a JSON number or the unknown marker.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*q = KnownQuantity(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != UnknownMarker {
		return errors.New("quantity must be a number or \"unknown\"")
	}
	*q = UnknownQuantity()
	return nil
}

// Product is the canonical product representation consumed by every stage.
// It is created once per run by the parser and never mutated afterwards.
type Product struct {
	// ID is unique within a process run.
	ID string `json:"id"`

	// Name is the trimmed display name. Always non-empty.
	Name string `json:"name"`

	// Concentration is the parsed active concentration in percent.
	Concentration Quantity `json:"concentration"`

	// ConcentrationText is the concentration as supplied, e.g. "10% Vitamin C".
	// Omitted when no concentration was given.
	ConcentrationText string `json:"concentration_text,omitempty"`

	SkinTypes   []string `json:"skin_type"`
	Ingredients []string `json:"ingredients"`
	Benefits    []string `json:"benefits"`

	// Usage is the how-to-use text.
	Usage string `json:"usage"`

	SideEffects string `json:"side_effects"`

	// Price is the parsed amount in Currency.
	Price Quantity `json:"price"`

	// PriceText is the price as supplied, e.g. "₹699". Omitted when no price was given.
	PriceText string `json:"price_text,omitempty"`

	// Currency is an ISO code detected from the price text. Empty when unknown.
	Currency string `json:"currency"`

	// Fictional marks a synthesised comparison product that does not exist.
	Fictional bool `json:"fictional"`
}

// DisplayPrice returns the price as a customer would read it.
func (p Product) DisplayPrice() string {
	if p.PriceText != "" {
		return p.PriceText
	}
	if !p.Price.IsKnown() {
		return NotAvailable
	}
	return CurrencySymbol(p.Currency) + p.Price.String()
}

// DisplayConcentration returns the concentration as a percentage string.
func (p Product) DisplayConcentration() string {
	if p.Concentration.IsKnown() {
		return p.Concentration.String() + "%"
	}
	if p.ConcentrationText != "" {
		return p.ConcentrationText
	}
	return NotAvailable
}

// CurrencySymbol maps an ISO currency code to its display symbol.
func CurrencySymbol(code string) string {
	switch code {
	case "INR":
		return "₹"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "JPY":
		return "¥"
	default:
		return ""
	}
}
