package domain

// RawProduct represents the product record as supplied by the caller.
// It is the parser's input before validation and normalisation. Values are
// whatever JSON decoding produced, so any field may be missing or mistyped.
type RawProduct map[string]any

// Input field names recognised in a RawProduct.
const (
	FieldProductName    = "product_name"
	FieldConcentration  = "concentration"
	FieldSkinType       = "skin_type"
	FieldKeyIngredients = "key_ingredients"
	FieldBenefits       = "benefits"
	FieldHowToUse       = "how_to_use"
	FieldSideEffects    = "side_effects"
	FieldPrice          = "price"
)

// RawProductFields lists every recognised input field in schema order.
func RawProductFields() []string {
	return []string{
		FieldProductName,
		FieldConcentration,
		FieldSkinType,
		FieldKeyIngredients,
		FieldBenefits,
		FieldHowToUse,
		FieldSideEffects,
		FieldPrice,
	}
}

// Lookup returns the value for key and whether it is present and non-null.
func (r RawProduct) Lookup(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
