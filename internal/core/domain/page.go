package domain

import "time"

// PageType identifies one of the three output pages.
type PageType string

// Output pages.
const (
	PageFAQ        PageType = "faq"
	PageProduct    PageType = "product"
	PageComparison PageType = "comparison"
)

// PageTypes returns every page type in write order.
func PageTypes() []PageType {
	return []PageType{PageFAQ, PageProduct, PageComparison}
}

// IsValid returns true if the page type is recognised.
func (p PageType) IsValid() bool {
	switch p {
	case PageFAQ, PageProduct, PageComparison:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p PageType) String() string {
	return string(p)
}

// FileName returns the output file name for the page.
func (p PageType) FileName() string {
	switch p {
	case PageFAQ:
		return "faq.json"
	case PageProduct:
		return "product_page.json"
	case PageComparison:
		return "comparison_page.json"
	default:
		return string(p) + ".json"
	}
}

// FAQ is one answered question.
type FAQ struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category Category `json:"category"`
}

// ProductEnhancement is the generated copy for the product page.
type ProductEnhancement struct {
	Headline               string   `json:"headline"`
	Description            string   `json:"description"`
	IngredientsDescription string   `json:"ingredients_description"`
	BenefitsDescription    string   `json:"benefits_description"`
	UsageTips              []string `json:"usage_tips"`
	Precautions            []string `json:"precautions"`
}

// FictionalDisclaimer is attached to every synthesised comparison product.
const FictionalDisclaimer = "Product B is a fictional product created for illustrative comparison only. " +
	"It does not represent any real product or brand."

// Recommendation is the deterministic verdict on the comparison page.
type Recommendation struct {
	BestForValue string `json:"best_for_value"`
	Note         string `json:"note"`
	Disclaimer   string `json:"disclaimer"`
}

// SystemInfo carries run metadata available to every template.
type SystemInfo struct {
	GeneratedAt string `json:"generated_at"`
	Generator   string `json:"generator"`
	Model       string `json:"model"`
	RunID       string `json:"run_id"`
}

// NewSystemInfo stamps the generation time in RFC 3339 UTC.
func NewSystemInfo(now time.Time, generator, model, runID string) SystemInfo {
	return SystemInfo{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Generator:   generator,
		Model:       model,
		RunID:       runID,
	}
}

// Bindings is everything a template may reference by source path.
// The JSON tags define the path names.
type Bindings struct {
	Product        *Product            `json:"product,omitempty"`
	ProductB       *Product            `json:"product_b,omitempty"`
	Blocks         Blocks              `json:"blocks"`
	Questions      QuestionSet         `json:"questions,omitempty"`
	FAQs           []FAQ               `json:"faqs,omitempty"`
	Enhanced       *ProductEnhancement `json:"enhanced,omitempty"`
	Recommendation *Recommendation     `json:"recommendation,omitempty"`
	System         SystemInfo          `json:"system"`
}
