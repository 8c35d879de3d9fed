package domain

// NotAvailable marks a value that could not be derived from the input.
const NotAvailable = "not available"

// FragmentType discriminates content fragments.
type FragmentType string

// Fragment types, one per logic transform.
const (
	FragmentBenefits    FragmentType = "benefits"
	FragmentUsage       FragmentType = "usage"
	FragmentSafety      FragmentType = "safety"
	FragmentIngredients FragmentType = "ingredients"
	FragmentComparison  FragmentType = "comparison"
)

// FragmentTypes returns every fragment type.
func FragmentTypes() []FragmentType {
	return []FragmentType{
		FragmentBenefits,
		FragmentUsage,
		FragmentSafety,
		FragmentIngredients,
		FragmentComparison,
	}
}

// IsValid returns true if the fragment type is recognised.
func (t FragmentType) IsValid() bool {
	switch t {
	case FragmentBenefits, FragmentUsage, FragmentSafety, FragmentIngredients, FragmentComparison:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t FragmentType) String() string {
	return string(t)
}

// BenefitItem is one benefit with its rule-based description.
type BenefitItem struct {
	Benefit     string `json:"benefit"`
	Description string `json:"description"`
}

// BenefitsFragment is produced by the benefits transform.
type BenefitsFragment struct {
	Type        FragmentType  `json:"type"`
	Title       string        `json:"title"`
	ProductName string        `json:"product_name"`
	Items       []BenefitItem `json:"items"`
	Count       int           `json:"count"`
	Summary     string        `json:"summary"`
}

// UsageStep is one numbered instruction.
type UsageStep struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
}

// UsageFragment is produced by the usage transform.
type UsageFragment struct {
	Type         FragmentType `json:"type"`
	Title        string       `json:"title"`
	ProductName  string       `json:"product_name"`
	Instructions string       `json:"instructions"`
	Steps        []UsageStep  `json:"steps"`
	StepCount    int          `json:"step_count"`
	Tips         []string     `json:"tips"`
	Frequency    string       `json:"frequency"`
	SuitableFor  []string     `json:"suitable_for"`
}

// Side-effect severities.
const (
	SeverityNoneReported = "none_reported"
	SeverityLow          = "low"
	SeverityMild         = "mild"
	SeverityModerate     = "moderate"
	SeverityHigh         = "high"
)

// SideEffectDetail is one recognised side effect.
type SideEffectDetail struct {
	Effect     string `json:"effect"`
	Likelihood string `json:"likelihood"`
}

// SideEffects structures the raw side-effect text.
type SideEffects struct {
	Description string             `json:"description"`
	Severity    string             `json:"severity"`
	Details     []SideEffectDetail `json:"details"`
}

// SafetyFragment is produced by the safety transform.
type SafetyFragment struct {
	Type                 FragmentType `json:"type"`
	Title                string       `json:"title"`
	ProductName          string       `json:"product_name"`
	SideEffects          SideEffects  `json:"side_effects"`
	Warnings             []string     `json:"warnings"`
	Precautions          []string     `json:"precautions"`
	PatchTestRecommended bool         `json:"patch_test_recommended"`
	ConsultationAdvised  bool         `json:"consultation_advised"`
}

// IngredientItem describes one key ingredient.
type IngredientItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Benefit     string `json:"benefit"`
	Category    string `json:"category"`
}

// IngredientsFragment is produced by the ingredients transform.
type IngredientsFragment struct {
	Type           FragmentType     `json:"type"`
	Title          string           `json:"title"`
	ProductName    string           `json:"product_name"`
	Items          []IngredientItem `json:"items"`
	Count          int              `json:"count"`
	Concentration  string           `json:"concentration"`
	HeroIngredient string           `json:"hero_ingredient"`
	Summary        string           `json:"summary"`
}

// Comparison sides.
const (
	SideProductA = "product_a"
	SideProductB = "product_b"
)

// ComparedProducts names both sides of a comparison.
type ComparedProducts struct {
	ProductA string `json:"product_a"`
	ProductB string `json:"product_b"`
}

// IngredientSide is one product's ingredient profile.
type IngredientSide struct {
	Ingredients   []string `json:"ingredients"`
	Count         int      `json:"count"`
	Concentration string   `json:"concentration"`
}

// IngredientsDimension compares ingredient lists.
type IngredientsDimension struct {
	ProductA  IngredientSide `json:"product_a"`
	ProductB  IngredientSide `json:"product_b"`
	Common    []string       `json:"common_ingredients"`
	UniqueToA []string       `json:"unique_to_a"`
	UniqueToB []string       `json:"unique_to_b"`
	Analysis  string         `json:"analysis"`
}

// BenefitSide is one product's benefit list.
type BenefitSide struct {
	Benefits []string `json:"benefits"`
	Count    int      `json:"count"`
}

// BenefitsDimension compares benefit lists.
type BenefitsDimension struct {
	ProductA  BenefitSide `json:"product_a"`
	ProductB  BenefitSide `json:"product_b"`
	Common    []string    `json:"common_benefits"`
	UniqueToA []string    `json:"unique_to_a"`
	UniqueToB []string    `json:"unique_to_b"`
	Analysis  string      `json:"analysis"`
}

// PriceSide is one product's price.
type PriceSide struct {
	Price     Quantity `json:"price"`
	Formatted string   `json:"formatted"`
}

// PriceDimension compares prices. Difference fields are unknown unless both prices are.
type PriceDimension struct {
	ProductA             PriceSide `json:"product_a"`
	ProductB             PriceSide `json:"product_b"`
	Difference           Quantity  `json:"difference"`
	PercentageDifference Quantity  `json:"percentage_difference"`
	CheaperOption        string    `json:"cheaper_option"`
	Analysis             string    `json:"analysis"`
}

// SkinTypeDimension compares target skin types.
type SkinTypeDimension struct {
	ProductA []string `json:"product_a"`
	ProductB []string `json:"product_b"`
	Common   []string `json:"common_skin_types"`
	Analysis string   `json:"analysis"`
}

// ComparisonDimensions holds every compared dimension.
type ComparisonDimensions struct {
	Ingredients IngredientsDimension `json:"ingredients"`
	Benefits    BenefitsDimension    `json:"benefits"`
	Price       PriceDimension       `json:"price"`
	SkinType    SkinTypeDimension    `json:"skin_type"`
}

// ComparisonScores holds one score per dimension from product A's point of view.
// Each score is -1, 0 or +1; swapping the products negates every score.
type ComparisonScores struct {
	Ingredients int `json:"ingredients"`
	Benefits    int `json:"benefits"`
	Price       int `json:"price"`
	SkinType    int `json:"skin_type"`
	Overall     int `json:"overall"`
}

// ComparisonFragment is produced by the comparison transform.
type ComparisonFragment struct {
	Type       FragmentType         `json:"type"`
	Title      string               `json:"title"`
	Products   ComparedProducts     `json:"products"`
	Dimensions ComparisonDimensions `json:"dimensions"`
	Scores     ComparisonScores     `json:"scores"`
	Winner     string               `json:"winner"`
	Summary    string               `json:"summary"`
}

// Blocks carries the fragments available to a render.
// A nil entry means the block is absent.
type Blocks struct {
	Benefits    *BenefitsFragment    `json:"benefits,omitempty"`
	Usage       *UsageFragment       `json:"usage,omitempty"`
	Safety      *SafetyFragment      `json:"safety,omitempty"`
	Ingredients *IngredientsFragment `json:"ingredients,omitempty"`
	Comparison  *ComparisonFragment  `json:"comparison,omitempty"`
}

// Has reports whether the block of type t is present.
func (b Blocks) Has(t FragmentType) bool {
	switch t {
	case FragmentBenefits:
		return b.Benefits != nil
	case FragmentUsage:
		return b.Usage != nil
	case FragmentSafety:
		return b.Safety != nil
	case FragmentIngredients:
		return b.Ingredients != nil
	case FragmentComparison:
		return b.Comparison != nil
	default:
		return false
	}
}
